package game

import (
	"time"

	"github.com/xmuzan/samplepomodoro/internal/progress"
)

type SkillView struct {
	Category       progress.SkillCategory `json:"category"`
	Label          string                 `json:"label"`
	Rank           string                 `json:"rank"`
	RankIndex      int                    `json:"rankIndex"`
	CompletedTasks int                    `json:"completedTasks"`
	TasksPerRank   int                    `json:"tasksPerRank"`
}

// View is what clients render: the stored record plus values derived at read time.
type View struct {
	Username      string             `json:"username"`
	State         progress.UserState `json:"state"`
	Timers        progress.Timers    `json:"timers"`
	PenaltyActive bool               `json:"penaltyActive"`
	Skills        []SkillView        `json:"skills"`
}

func (s *Service) view(username string, st progress.UserState, boss progress.BossState, now time.Time) View {
	v := View{
		Username:      username,
		State:         st,
		Timers:        progress.TimersAt(st, boss, now),
		PenaltyActive: st.PenaltyActive(now),
	}
	for _, info := range progress.Skills() {
		if info.Category == progress.CategoryOther {
			continue
		}
		sp := st.SkillData[info.Category]
		v.Skills = append(v.Skills, SkillView{
			Category:       info.Category,
			Label:          info.Label,
			Rank:           progress.RankName(info.Category, sp.RankIndex),
			RankIndex:      sp.RankIndex,
			CompletedTasks: sp.CompletedTasks,
			TasksPerRank:   s.engine.Rules.TasksPerRank,
		})
	}
	return v
}
