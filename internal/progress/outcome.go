package progress

import (
	"fmt"
	"strings"
)

// Outcome describes what a transition did, in the order the rules applied.
type Outcome struct {
	Messages []string `json:"messages"`

	TaskID         string  `json:"taskId,omitempty"`
	GoldDelta      int     `json:"goldDelta"`
	LevelUp        bool    `json:"levelUp,omitempty"`
	PenaltyBlocked bool    `json:"penaltyBlocked,omitempty"`
	HPPenalty      bool    `json:"hpPenalty,omitempty"`
	MPFrozen       bool    `json:"mpFrozen,omitempty"`
	PenaltyStarted bool    `json:"penaltyStarted,omitempty"`
	DeadlineArmed  bool    `json:"deadlineArmed,omitempty"`
	ItemConsumed   bool    `json:"itemConsumed,omitempty"`
	BossDamage     float64 `json:"bossDamage,omitempty"`
	BossDefeated   bool    `json:"bossDefeated,omitempty"`
}

func (o *Outcome) note(format string, args ...any) {
	o.Messages = append(o.Messages, fmt.Sprintf(format, args...))
}

// Message is the human-readable summary shown to the player.
func (o Outcome) Message() string {
	return strings.Join(o.Messages, " ")
}
