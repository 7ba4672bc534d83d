package telemetry

import "time"

type EventType string

const (
	EventTaskCreated     EventType = "task_created"
	EventTaskCompleted   EventType = "task_completed"
	EventTaskUncompleted EventType = "task_uncompleted"
	EventTaskDeleted     EventType = "task_deleted"
	EventReport          EventType = "behavior_reported"
	EventItemPurchased   EventType = "item_purchased"
	EventItemUsed        EventType = "item_used"
	EventItemDiscarded   EventType = "item_discarded"
	EventAttributeSpent  EventType = "attribute_spent"
	EventLevelUp         EventType = "level_up"
	EventPenaltyStarted  EventType = "penalty_started"
	EventBossAttacked    EventType = "boss_attacked"
	EventBossDefeated    EventType = "boss_defeated"
	EventProgressReset   EventType = "progress_reset"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
