package progress

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

func (e *Engine) toggleTask(s *UserState, taskID string, now time.Time) (Outcome, error) {
	i := s.taskIndex(taskID)
	if i < 0 {
		return Outcome{}, notFound("task %s not found", taskID)
	}

	task := s.Tasks[i]
	task.Completed = !task.Completed
	s.Tasks[i] = task

	out := Outcome{TaskID: task.ID}
	if task.Completed {
		e.completeTask(s, task, now, &out)
	} else {
		e.uncompleteTask(s, task, &out)
	}

	if !s.HasIncompleteTasks() {
		s.TaskDeadline = nil
	}
	return out, nil
}

func (e *Engine) completeTask(s *UserState, task Task, now time.Time, out *Outcome) {
	if s.PenaltyActive(now) {
		out.PenaltyBlocked = true
		out.note("Penalty active, no rewards until it ends.")
	} else {
		reward := task.Reward
		if s.Vitals.HP <= 0 {
			reward = int(math.Round(float64(task.Reward) * e.Rules.HPZeroRewardRate))
			out.HPPenalty = true
			out.note("HP is zero, gold reward reduced to %d.", reward)
		}
		if s.Vitals.MP <= 0 {
			out.MPFrozen = true
			out.note("MP is zero, level progress frozen.")
		}

		s.Gold += reward
		out.GoldDelta = reward
		out.note("+%d gold.", reward)

		if !out.MPFrozen {
			s.TasksCompletedThisLevel++
			if s.TasksCompletedThisLevel >= s.TasksRequiredForNextLevel {
				s.Level++
				s.TasksCompletedThisLevel = 0
				s.TasksRequiredForNextLevel = e.Rules.tasksRequiredFor(s.Level)
				s.AttributePoints++
				s.Tier = TierForLevel(s.Level)
				out.LevelUp = true
				out.note("Level up! You reached level %d.", s.Level)
			}
		}
	}

	if task.Category != CategoryOther {
		s.SkillData[task.Category] = advanceSkill(s.SkillData[task.Category], e.Rules)
	}
}

// uncompleteTask reverses a completion. Levels are never taken back.
func (e *Engine) uncompleteTask(s *UserState, task Task, out *Outcome) {
	if s.TasksCompletedThisLevel > 0 {
		s.TasksCompletedThisLevel--
	}
	before := s.Gold
	s.Gold = max(0, s.Gold-task.Reward)
	out.GoldDelta = s.Gold - before

	if task.Category != CategoryOther {
		if sp, ok := s.SkillData[task.Category]; ok {
			s.SkillData[task.Category] = revertSkill(sp, e.Rules)
		}
	}
	out.note("Task undone, %d gold taken back.", -out.GoldDelta)
}

func (e *Engine) deleteTask(s *UserState, taskID string) (Outcome, error) {
	i := s.taskIndex(taskID)
	if i < 0 {
		return Outcome{}, notFound("task %s not found", taskID)
	}
	task := s.Tasks[i]
	s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)

	out := Outcome{TaskID: task.ID}
	if task.Completed && e.Rules.ReverseOnDelete {
		e.uncompleteTask(s, task, &out)
	}
	if !s.HasIncompleteTasks() {
		s.TaskDeadline = nil
	}
	out.note("Task deleted.")
	return out, nil
}

func (e *Engine) createTask(s *UserState, in CreateTask, now time.Time) (Outcome, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Outcome{}, invalid("task text is required")
	}
	if utf8.RuneCountInString(text) > e.Rules.MaxTaskTextRunes {
		return Outcome{}, invalid("task text is longer than %d characters", e.Rules.MaxTaskTextRunes)
	}
	if !in.Difficulty.IsValid() {
		return Outcome{}, invalid("unknown difficulty %q", in.Difficulty)
	}
	if !in.Category.IsValid() {
		return Outcome{}, invalid("unknown category %q", in.Category)
	}

	task := Task{
		ID:         e.NewID(),
		Text:       text,
		Difficulty: in.Difficulty,
		Reward:     e.Rules.rewardFor(in.Difficulty),
		Category:   in.Category,
	}
	s.Tasks = append(s.Tasks, task)

	out := Outcome{TaskID: task.ID}
	out.note("Task added.")
	if s.TaskDeadline == nil && !s.PenaltyActive(now) {
		deadline := now.Add(e.Rules.DeadlineWindow)
		s.TaskDeadline = &deadline
		out.DeadlineArmed = true
		out.note("Finish your tasks within %s.", e.Rules.DeadlineWindow)
	}
	return out, nil
}
