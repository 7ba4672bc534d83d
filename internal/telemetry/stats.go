package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period           string            `json:"period"`
	EventCounts      map[EventType]int `json:"event_counts"`
	ActiveUsers      int               `json:"active_users"`
	ActiveDays       int               `json:"active_days"`
	TaskCompletions  int               `json:"task_completions"`
	TasksPerDay      float64           `json:"tasks_per_day"`
	GoldEarned       int               `json:"gold_earned"`
	GoldSpent        int               `json:"gold_spent"`
	LevelUps         int               `json:"level_ups"`
	PenaltiesStarted int               `json:"penalties_started"`
	BossAttacks      int               `json:"boss_attacks"`
	BossDefeats      int               `json:"boss_defeats"`
	ItemsPurchased   map[string]int    `json:"items_purchased"`
	ReportsByAction  map[string]int    `json:"reports_by_action"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:          since.Format("2006-01-02"),
		EventCounts:     make(map[EventType]int),
		ItemsPurchased:  make(map[string]int),
		ReportsByAction: make(map[string]int),
	}
	users := map[string]bool{}
	days := map[string]bool{}

	for _, event := range events {
		stats.EventCounts[event.Type]++
		if event.Username != "" {
			users[event.Username] = true
		}
		days[event.Timestamp.UTC().Format("2006-01-02")] = true

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}
		gold := intField(metadata, "gold_delta")

		switch event.Type {
		case EventTaskCompleted:
			stats.TaskCompletions++
			stats.GoldEarned += max(0, gold)
		case EventBossDefeated:
			stats.BossDefeats++
			stats.GoldEarned += max(0, gold)
		case EventItemPurchased:
			stats.GoldSpent += max(0, -gold)
			if item, ok := metadata["item_id"].(string); ok {
				stats.ItemsPurchased[item]++
			}
		case EventReport:
			if action, ok := metadata["action_id"].(string); ok {
				stats.ReportsByAction[action]++
			}
		case EventLevelUp:
			stats.LevelUps++
		case EventPenaltyStarted:
			stats.PenaltiesStarted++
		case EventBossAttacked:
			stats.BossAttacks++
		}
	}

	stats.ActiveUsers = len(users)
	stats.ActiveDays = len(days)
	if stats.ActiveDays > 0 {
		stats.TasksPerDay = float64(stats.TaskCompletions) / float64(stats.ActiveDays)
	}
	return stats, nil
}

// JSON numbers decode as float64.
func intField(m EventMetadata, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
