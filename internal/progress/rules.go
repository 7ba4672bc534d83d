package progress

import (
	"fmt"
	"time"
)

const MaxVital = 100

// maxRankIndex is the last index every skill has a rank name for.
const maxRankIndex = 9

// Rules holds every tunable number the transitions use.
type Rules struct {
	StartingGold      int `yaml:"starting_gold" json:"starting_gold"`
	BaseTasksPerLevel int `yaml:"base_tasks_per_level" json:"base_tasks_per_level"`
	TasksPerRank      int `yaml:"tasks_per_rank" json:"tasks_per_rank"`
	MaxRankIndex      int `yaml:"max_rank_index" json:"max_rank_index"`

	EasyReward       int     `yaml:"easy_reward" json:"easy_reward"`
	HardReward       int     `yaml:"hard_reward" json:"hard_reward"`
	HPZeroRewardRate float64 `yaml:"hp_zero_reward_rate" json:"hp_zero_reward_rate"`
	ReverseOnDelete  bool    `yaml:"reverse_on_delete" json:"reverse_on_delete"`
	MaxTaskTextRunes int     `yaml:"max_task_text_runes" json:"max_task_text_runes"`

	DeadlineWindow time.Duration `yaml:"deadline_window" json:"deadline_window"`
	PenaltyWindow  time.Duration `yaml:"penalty_window" json:"penalty_window"`

	BossMinMP          int           `yaml:"boss_min_mp" json:"boss_min_mp"`
	BossMPCost         int           `yaml:"boss_mp_cost" json:"boss_mp_cost"`
	BossHPCost         int           `yaml:"boss_hp_cost" json:"boss_hp_cost"`
	BossDamageFraction float64       `yaml:"boss_damage_fraction" json:"boss_damage_fraction"`
	BossDefeatGold     int           `yaml:"boss_defeat_gold" json:"boss_defeat_gold"`
	BossRespawn        time.Duration `yaml:"boss_respawn" json:"boss_respawn"`
}

func DefaultRules() Rules {
	return Rules{
		StartingGold:       150,
		BaseTasksPerLevel:  32,
		TasksPerRank:       20,
		MaxRankIndex:       9,
		EasyReward:         50,
		HardReward:         200,
		HPZeroRewardRate:   0.1,
		ReverseOnDelete:    true,
		MaxTaskTextRunes:   200,
		DeadlineWindow:     24 * time.Hour,
		PenaltyWindow:      24 * time.Hour,
		BossMinMP:          10,
		BossMPCost:         10,
		BossHPCost:         2,
		BossDamageFraction: 0.05,
		BossDefeatGold:     1000,
		BossRespawn:        48 * time.Hour,
	}
}

// WithDefaults returns DefaultRules for the zero Rules. Otherwise it only fills
// the counts, windows and fractions the transitions cannot run without. Gold,
// rewards and boss costs are amounts where zero is a valid setting and are
// taken as given, like ReverseOnDelete.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r == (Rules{}) {
		return d
	}
	if r.BaseTasksPerLevel <= 0 {
		r.BaseTasksPerLevel = d.BaseTasksPerLevel
	}
	if r.TasksPerRank <= 0 {
		r.TasksPerRank = d.TasksPerRank
	}
	if r.MaxTaskTextRunes <= 0 {
		r.MaxTaskTextRunes = d.MaxTaskTextRunes
	}
	if r.DeadlineWindow <= 0 {
		r.DeadlineWindow = d.DeadlineWindow
	}
	if r.PenaltyWindow <= 0 {
		r.PenaltyWindow = d.PenaltyWindow
	}
	if r.BossDamageFraction <= 0 {
		r.BossDamageFraction = d.BossDamageFraction
	}
	if r.BossRespawn <= 0 {
		r.BossRespawn = d.BossRespawn
	}
	return r
}

// Validate reports the first setting outside its allowed range.
func (r Rules) Validate() error {
	nonNegative := []struct {
		name string
		v    int
	}{
		{"starting_gold", r.StartingGold},
		{"easy_reward", r.EasyReward},
		{"hard_reward", r.HardReward},
		{"boss_min_mp", r.BossMinMP},
		{"boss_mp_cost", r.BossMPCost},
		{"boss_hp_cost", r.BossHPCost},
		{"boss_defeat_gold", r.BossDefeatGold},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return fmt.Errorf("rules.%s must not be negative, got %d", f.name, f.v)
		}
	}

	positive := []struct {
		name string
		ok   bool
	}{
		{"base_tasks_per_level", r.BaseTasksPerLevel > 0},
		{"tasks_per_rank", r.TasksPerRank > 0},
		{"max_task_text_runes", r.MaxTaskTextRunes > 0},
		{"deadline_window", r.DeadlineWindow > 0},
		{"penalty_window", r.PenaltyWindow > 0},
		{"boss_respawn", r.BossRespawn > 0},
	}
	for _, f := range positive {
		if !f.ok {
			return fmt.Errorf("rules.%s must be positive", f.name)
		}
	}

	if r.MaxRankIndex < 0 || r.MaxRankIndex > maxRankIndex {
		return fmt.Errorf("rules.max_rank_index must be between 0 and %d, got %d", maxRankIndex, r.MaxRankIndex)
	}
	if r.HPZeroRewardRate < 0 || r.HPZeroRewardRate > 1 {
		return fmt.Errorf("rules.hp_zero_reward_rate must be between 0 and 1, got %g", r.HPZeroRewardRate)
	}
	if r.BossDamageFraction <= 0 || r.BossDamageFraction > 1 {
		return fmt.Errorf("rules.boss_damage_fraction must be in (0, 1], got %g", r.BossDamageFraction)
	}
	return nil
}

func (r Rules) tasksRequiredFor(level int) int {
	return r.BaseTasksPerLevel + level
}

func (r Rules) rewardFor(d Difficulty) int {
	if d == DifficultyEasy {
		return r.EasyReward
	}
	return r.HardReward
}

func clampVital(v int) int {
	return min(MaxVital, max(0, v))
}
