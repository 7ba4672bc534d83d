package config

import (
	"time"

	"github.com/xmuzan/samplepomodoro/internal/progress"
)

// Casual softens the economy: cheaper level-ups and a longer deadline.
func Casual() progress.Rules {
	r := progress.DefaultRules()
	r.BaseTasksPerLevel = 20
	r.TasksPerRank = 12
	r.HPZeroRewardRate = 0.5
	r.DeadlineWindow = 48 * time.Hour
	r.PenaltyWindow = 12 * time.Hour
	return r
}

// Hard tightens deadlines and doubles the penalty window.
func Hard() progress.Rules {
	r := progress.DefaultRules()
	r.BaseTasksPerLevel = 40
	r.TasksPerRank = 30
	r.HPZeroRewardRate = 0.05
	r.DeadlineWindow = 12 * time.Hour
	r.PenaltyWindow = 48 * time.Hour
	r.BossMPCost = 20
	return r
}
