package progress

// Event is the closed set of player actions the engine understands.
// Only types in this package implement it.
type Event interface {
	Name() string
	sealed()
}

type ToggleTask struct {
	TaskID string `json:"taskId"`
}

type DeleteTask struct {
	TaskID string `json:"taskId"`
}

type CreateTask struct {
	Text       string        `json:"text"`
	Difficulty Difficulty    `json:"difficulty"`
	Category   SkillCategory `json:"category"`
}

type EvaluateDeadline struct{}

type ReportBehavior struct {
	ActionID string `json:"actionId"`
}

type PurchaseItem struct {
	ItemID string `json:"itemId"`
}

type UseItem struct {
	ItemID string `json:"itemId"`
}

type DiscardItem struct {
	ItemID string `json:"itemId"`
}

type SpendAttributePoint struct {
	Attribute Attribute `json:"attribute"`
}

// ResetProgress wipes the record back to defaults. The actor's admin flag comes from the session.
type ResetProgress struct {
	ActorIsAdmin bool `json:"-"`
}

func (ToggleTask) Name() string          { return "toggle_task" }
func (DeleteTask) Name() string          { return "delete_task" }
func (CreateTask) Name() string          { return "create_task" }
func (EvaluateDeadline) Name() string    { return "evaluate_deadline" }
func (ReportBehavior) Name() string      { return "report_behavior" }
func (PurchaseItem) Name() string        { return "purchase_item" }
func (UseItem) Name() string             { return "use_item" }
func (DiscardItem) Name() string         { return "discard_item" }
func (SpendAttributePoint) Name() string { return "spend_attribute_point" }
func (ResetProgress) Name() string       { return "reset_progress" }

func (ToggleTask) sealed()          {}
func (DeleteTask) sealed()          {}
func (CreateTask) sealed()          {}
func (EvaluateDeadline) sealed()    {}
func (ReportBehavior) sealed()      {}
func (PurchaseItem) sealed()        {}
func (UseItem) sealed()             {}
func (DiscardItem) sealed()         {}
func (SpendAttributePoint) sealed() {}
func (ResetProgress) sealed()       {}
