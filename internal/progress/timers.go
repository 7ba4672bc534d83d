package progress

import "time"

// Timers are display countdowns derived from now. Nothing is scheduled.
type Timers struct {
	Deadline    time.Duration `json:"deadline"`
	Penalty     time.Duration `json:"penalty"`
	BossRespawn time.Duration `json:"bossRespawn"`
}

func remaining(t *time.Time, now time.Time) time.Duration {
	if t == nil || !t.After(now) {
		return 0
	}
	return t.Sub(now)
}

func TimersAt(s UserState, boss BossState, now time.Time) Timers {
	return Timers{
		Deadline:    remaining(s.TaskDeadline, now),
		Penalty:     remaining(s.PenaltyEndTime, now),
		BossRespawn: remaining(boss.RespawnTime, now),
	}
}
