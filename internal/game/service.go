package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/player"
	"github.com/xmuzan/samplepomodoro/internal/progress"
	"github.com/xmuzan/samplepomodoro/internal/telemetry"
	"github.com/xmuzan/samplepomodoro/internal/world"

	"go.uber.org/zap"
)

type Options struct {
	Engine  *progress.Engine
	Players player.Repo
	Bosses  world.BossRepo
	BossID  string
	Events  telemetry.Repository
	Clock   Clock
	Logger  *zap.Logger
}

// Service runs the load, transition, save cycle for one event at a time.
type Service struct {
	engine  *progress.Engine
	players player.Repo
	bosses  world.BossRepo
	bossID  string
	events  telemetry.Repository
	clock   Clock
	logger  *zap.Logger
}

func NewService(opts Options) (*Service, error) {
	if opts.Players == nil || opts.Bosses == nil {
		return nil, errors.New("player and boss stores are required")
	}
	if opts.Engine == nil {
		opts.Engine = progress.NewEngine(progress.DefaultRules(), progress.DefaultCatalog())
	}
	if opts.BossID == "" {
		opts.BossID = progress.DefaultBossID
	}
	if opts.Events == nil {
		opts.Events = telemetry.NewMemoryRepository()
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		engine:  opts.Engine,
		players: opts.Players,
		bosses:  opts.Bosses,
		bossID:  opts.BossID,
		events:  opts.Events,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}, nil
}

func (s *Service) Engine() *progress.Engine { return s.engine }

// CreatePlayer stores the default record for a new account. Existing records are kept.
func (s *Service) CreatePlayer(ctx context.Context, username string) error {
	err := s.players.Create(ctx, username, progress.DefaultUserState(s.engine.Rules))
	if errors.Is(err, progress.ErrPreconditionFailed) {
		return nil
	}
	return err
}

// load returns the user's record with the deadline evaluated at now. A user that
// authenticated but has no record yet gets the defaults.
func (s *Service) load(ctx context.Context, username string, now time.Time) (progress.UserState, error) {
	st, err := s.players.Load(ctx, username)
	if errors.Is(err, progress.ErrNotFound) {
		if err := s.CreatePlayer(ctx, username); err != nil {
			return progress.UserState{}, err
		}
		st, err = s.players.Load(ctx, username)
	}
	if err != nil {
		return progress.UserState{}, err
	}

	next, out, err := s.engine.Apply(st, progress.EvaluateDeadline{}, now)
	if err != nil {
		return progress.UserState{}, err
	}
	if err := s.save(ctx, username, st, next); err != nil {
		return progress.UserState{}, err
	}
	if out.PenaltyStarted {
		s.record(telemetry.EventPenaltyStarted, username, now, telemetry.EventMetadata{
			"until": next.PenaltyEndTime,
		})
		s.logger.Info("penalty_started", zap.String("username", username), zap.Timep("until", next.PenaltyEndTime))
	}
	return next, nil
}

func (s *Service) save(ctx context.Context, username string, before, after progress.UserState) error {
	p := progress.Diff(before, after)
	if p.Empty() {
		return nil
	}
	if err := s.players.Save(ctx, username, p); err != nil {
		return fmt.Errorf("save %s: %w", username, err)
	}
	return nil
}

func (s *Service) boss(ctx context.Context, now time.Time) (progress.BossState, error) {
	b, err := s.bosses.Get(ctx, s.bossID)
	if err != nil {
		return progress.BossState{}, err
	}
	return b.Refresh(now), nil
}

func (s *Service) State(ctx context.Context, username string) (View, error) {
	now := s.clock.Now()
	st, err := s.load(ctx, username, now)
	if err != nil {
		return View{}, err
	}
	b, err := s.boss(ctx, now)
	if err != nil {
		return View{}, err
	}
	return s.view(username, st, b, now), nil
}

// Apply runs one player event. Rejected events persist nothing.
func (s *Service) Apply(ctx context.Context, username string, ev progress.Event) (View, progress.Outcome, error) {
	now := s.clock.Now()
	st, err := s.load(ctx, username, now)
	if err != nil {
		return View{}, progress.Outcome{}, err
	}

	next, out, err := s.engine.Apply(st, ev, now)
	if err != nil {
		s.logger.Debug("event_rejected",
			zap.String("username", username),
			zap.String("event", eventName(ev)),
			zap.String("kind", string(progress.KindOf(err))),
			zap.Error(err),
		)
		return View{}, progress.Outcome{}, err
	}
	if err := s.save(ctx, username, st, next); err != nil {
		return View{}, progress.Outcome{}, err
	}

	s.logger.Debug("event_applied",
		zap.String("username", username),
		zap.String("event", ev.Name()),
		zap.Int("gold_delta", out.GoldDelta),
		zap.Bool("level_up", out.LevelUp),
	)
	s.recordOutcome(username, ev, next, out, now)

	b, err := s.boss(ctx, now)
	if err != nil {
		return View{}, progress.Outcome{}, err
	}
	return s.view(username, next, b, now), out, nil
}

// AttackBoss runs the attack inside the boss store's update so only one attacker
// can land the finishing blow. The attacker's record is saved inside the same
// update: a failed save leaves the boss untouched.
func (s *Service) AttackBoss(ctx context.Context, username string) (View, progress.BossState, progress.Outcome, error) {
	now := s.clock.Now()
	st, err := s.load(ctx, username, now)
	if err != nil {
		return View{}, progress.BossState{}, progress.Outcome{}, err
	}

	var (
		nextUser progress.UserState
		out      progress.Outcome
		saved    bool
	)
	b, err := s.bosses.Update(ctx, s.bossID, func(ctx context.Context, cur progress.BossState) (progress.BossState, error) {
		u, nb, o, err := s.engine.AttackBoss(st, cur, now)
		if err != nil {
			return cur, err
		}
		if err := s.save(ctx, username, st, u); err != nil {
			return cur, err
		}
		nextUser, out, saved = u, o, true
		return nb, nil
	})
	if err != nil {
		if saved {
			s.undoAttack(ctx, username, nextUser, st)
		}
		if progress.KindOf(err) == "" {
			s.logger.Error("boss_attack_failed", zap.String("username", username), zap.Error(err))
		}
		return View{}, progress.BossState{}, progress.Outcome{}, err
	}

	s.record(telemetry.EventBossAttacked, username, now, telemetry.EventMetadata{"damage": out.BossDamage})
	if out.BossDefeated {
		s.record(telemetry.EventBossDefeated, username, now, telemetry.EventMetadata{"gold_delta": out.GoldDelta, "defeats": b.Defeats})
		s.logger.Info("boss_defeated", zap.String("username", username), zap.String("boss", b.ID), zap.Int("defeats", b.Defeats))
	}
	return s.view(username, nextUser, b, now), b, out, nil
}

// undoAttack restores the attacker's record when the boss write failed after the
// player save went through. Transactional stores already rolled both back, so
// the patch then rewrites the values already stored.
func (s *Service) undoAttack(ctx context.Context, username string, applied, before progress.UserState) {
	if err := s.save(ctx, username, applied, before); err != nil {
		s.logger.Error("boss_attack_undo_failed", zap.String("username", username), zap.Error(err))
	}
}

func (s *Service) Boss(ctx context.Context) (progress.BossState, error) {
	return s.boss(ctx, s.clock.Now())
}

// ResetProgress overwrites target's record with the defaults. Only admins may do this.
func (s *Service) ResetProgress(ctx context.Context, actorIsAdmin bool, target string) (View, error) {
	now := s.clock.Now()
	st, err := s.players.Load(ctx, target)
	if err != nil {
		return View{}, err
	}
	next, out, err := s.engine.Apply(st, progress.ResetProgress{ActorIsAdmin: actorIsAdmin}, now)
	if err != nil {
		return View{}, err
	}
	if err := s.players.Put(ctx, target, next); err != nil {
		return View{}, err
	}
	s.recordOutcome(target, progress.ResetProgress{ActorIsAdmin: actorIsAdmin}, next, out, now)
	s.logger.Info("progress_reset", zap.String("username", target))

	b, err := s.boss(ctx, now)
	if err != nil {
		return View{}, err
	}
	return s.view(target, next, b, now), nil
}

func (s *Service) Stats(since time.Time) (telemetry.Stats, error) {
	events, err := s.events.GetEvents(since, nil)
	if err != nil {
		return telemetry.Stats{}, err
	}
	return telemetry.CalculateStats(events, since)
}

func eventName(ev progress.Event) string {
	if ev == nil {
		return ""
	}
	return ev.Name()
}

func (s *Service) record(t telemetry.EventType, username string, at time.Time, md telemetry.EventMetadata) {
	if err := s.events.RecordEvent(t, username, at, md); err != nil {
		s.logger.Warn("telemetry_record_failed", zap.String("type", string(t)), zap.Error(err))
	}
}

func (s *Service) recordOutcome(username string, ev progress.Event, next progress.UserState, out progress.Outcome, now time.Time) {
	switch ev := ev.(type) {
	case progress.CreateTask:
		s.record(telemetry.EventTaskCreated, username, now, telemetry.EventMetadata{
			"task_id": out.TaskID, "category": ev.Category, "difficulty": ev.Difficulty,
		})
	case progress.ToggleTask:
		typ := telemetry.EventTaskUncompleted
		for _, t := range next.Tasks {
			if t.ID == ev.TaskID && t.Completed {
				typ = telemetry.EventTaskCompleted
			}
		}
		s.record(typ, username, now, telemetry.EventMetadata{
			"task_id": ev.TaskID, "gold_delta": out.GoldDelta, "penalty_blocked": out.PenaltyBlocked,
		})
	case progress.DeleteTask:
		s.record(telemetry.EventTaskDeleted, username, now, telemetry.EventMetadata{"task_id": ev.TaskID, "gold_delta": out.GoldDelta})
	case progress.ReportBehavior:
		s.record(telemetry.EventReport, username, now, telemetry.EventMetadata{"action_id": ev.ActionID})
	case progress.PurchaseItem:
		s.record(telemetry.EventItemPurchased, username, now, telemetry.EventMetadata{"item_id": ev.ItemID, "gold_delta": out.GoldDelta})
	case progress.UseItem:
		if out.ItemConsumed {
			s.record(telemetry.EventItemUsed, username, now, telemetry.EventMetadata{"item_id": ev.ItemID})
		}
	case progress.DiscardItem:
		s.record(telemetry.EventItemDiscarded, username, now, telemetry.EventMetadata{"item_id": ev.ItemID})
	case progress.SpendAttributePoint:
		s.record(telemetry.EventAttributeSpent, username, now, telemetry.EventMetadata{"attribute": ev.Attribute})
	case progress.ResetProgress:
		s.record(telemetry.EventProgressReset, username, now, nil)
	}
	if out.LevelUp {
		s.record(telemetry.EventLevelUp, username, now, telemetry.EventMetadata{"level": next.Level})
	}
}
