package progress

import "time"

type Difficulty string

const (
	DifficultyEasy Difficulty = "easy"
	DifficultyHard Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyHard:
		return true
	default:
		return false
	}
}

type Attribute string

const (
	AttributeSTR Attribute = "str"
	AttributeVIT Attribute = "vit"
	AttributeAGI Attribute = "agi"
	AttributeINT Attribute = "int"
	AttributePER Attribute = "per"
)

func (a Attribute) IsValid() bool {
	switch a {
	case AttributeSTR, AttributeVIT, AttributeAGI, AttributeINT, AttributePER:
		return true
	default:
		return false
	}
}

type Stat string

const (
	StatHP Stat = "hp"
	StatMP Stat = "mp"
)

type Task struct {
	ID         string        `json:"id"`
	Text       string        `json:"text"`
	Completed  bool          `json:"completed"`
	Difficulty Difficulty    `json:"difficulty"`
	Reward     int           `json:"reward"`
	Category   SkillCategory `json:"category"`
}

type Attributes struct {
	STR int `json:"str"`
	VIT int `json:"vit"`
	AGI int `json:"agi"`
	INT int `json:"int"`
	PER int `json:"per"`
}

func (a *Attributes) ptr(attr Attribute) *int {
	switch attr {
	case AttributeSTR:
		return &a.STR
	case AttributeVIT:
		return &a.VIT
	case AttributeAGI:
		return &a.AGI
	case AttributeINT:
		return &a.INT
	case AttributePER:
		return &a.PER
	}
	return nil
}

// Get returns the allocation for attr, 0 for unknown attributes.
func (a Attributes) Get(attr Attribute) int {
	if p := a.ptr(attr); p != nil {
		return *p
	}
	return 0
}

type Vitals struct {
	HP int `json:"hp"`
	MP int `json:"mp"`
	IR int `json:"ir"`
}

func (v *Vitals) ptr(s Stat) *int {
	switch s {
	case StatHP:
		return &v.HP
	case StatMP:
		return &v.MP
	}
	return nil
}

type SkillProgress struct {
	CompletedTasks int `json:"completedTasks"`
	RankIndex      int `json:"rankIndex"`
}

type InventoryItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// UserState is the persisted game record of one account.
type UserState struct {
	Gold                      int                             `json:"gold"`
	Level                     int                             `json:"level"`
	TasksCompletedThisLevel   int                             `json:"tasksCompletedThisLevel"`
	TasksRequiredForNextLevel int                             `json:"tasksRequiredForNextLevel"`
	AttributePoints           int                             `json:"attributePoints"`
	Attributes                Attributes                      `json:"attributes"`
	Vitals                    Vitals                          `json:"vitals"`
	Tier                      Tier                            `json:"tier"`
	SkillData                 map[SkillCategory]SkillProgress `json:"skillData"`
	Tasks                     []Task                          `json:"tasks"`
	Inventory                 []InventoryItem                 `json:"inventory"`
	PenaltyEndTime            *time.Time                      `json:"penaltyEndTime"`
	TaskDeadline              *time.Time                      `json:"taskDeadline"`
}

// DefaultUserState is the record every account starts with and returns to on reset.
func DefaultUserState(rules Rules) UserState {
	return UserState{
		Gold:                      rules.StartingGold,
		Level:                     0,
		TasksCompletedThisLevel:   0,
		TasksRequiredForNextLevel: rules.BaseTasksPerLevel,
		Vitals:                    Vitals{HP: MaxVital, MP: MaxVital, IR: MaxVital},
		Tier:                      TierForLevel(0),
		SkillData:                 map[SkillCategory]SkillProgress{},
		Tasks:                     []Task{},
		Inventory:                 []InventoryItem{},
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Clone returns a deep copy; transitions never alias the caller's slices or maps.
func (s UserState) Clone() UserState {
	out := s
	out.SkillData = make(map[SkillCategory]SkillProgress, len(s.SkillData))
	for k, v := range s.SkillData {
		out.SkillData[k] = v
	}
	out.Tasks = append([]Task{}, s.Tasks...)
	out.Inventory = append([]InventoryItem{}, s.Inventory...)
	out.PenaltyEndTime = cloneTime(s.PenaltyEndTime)
	out.TaskDeadline = cloneTime(s.TaskDeadline)
	return out
}

// PenaltyActive reports whether reward-granting rules are suppressed at now.
func (s UserState) PenaltyActive(now time.Time) bool {
	return s.PenaltyEndTime != nil && s.PenaltyEndTime.After(now)
}

func (s UserState) HasIncompleteTasks() bool {
	for _, t := range s.Tasks {
		if !t.Completed {
			return true
		}
	}
	return false
}

func (s UserState) taskIndex(id string) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s UserState) inventoryIndex(itemID string) int {
	for i, it := range s.Inventory {
		if it.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Quantity returns how many of itemID the user holds.
func (s UserState) Quantity(itemID string) int {
	if i := s.inventoryIndex(itemID); i >= 0 {
		return s.Inventory[i].Quantity
	}
	return 0
}

// Normalize repairs a record loaded from storage so every invariant holds.
func Normalize(s UserState, rules Rules) UserState {
	out := s.Clone()
	out.Gold = max(0, out.Gold)
	out.Level = max(0, out.Level)
	out.TasksCompletedThisLevel = max(0, out.TasksCompletedThisLevel)
	if out.TasksRequiredForNextLevel <= 0 {
		out.TasksRequiredForNextLevel = rules.tasksRequiredFor(out.Level)
	}
	out.AttributePoints = max(0, out.AttributePoints)
	out.Attributes = Attributes{
		STR: max(0, out.Attributes.STR),
		VIT: max(0, out.Attributes.VIT),
		AGI: max(0, out.Attributes.AGI),
		INT: max(0, out.Attributes.INT),
		PER: max(0, out.Attributes.PER),
	}
	out.Vitals = Vitals{
		HP: clampVital(out.Vitals.HP),
		MP: clampVital(out.Vitals.MP),
		IR: clampVital(out.Vitals.IR),
	}
	out.Tier = TierForLevel(out.Level)

	for cat, sp := range out.SkillData {
		if cat == CategoryOther || !cat.IsValid() {
			delete(out.SkillData, cat)
			continue
		}
		sp.RankIndex = min(max(0, sp.RankIndex), rules.MaxRankIndex)
		sp.CompletedTasks = min(max(0, sp.CompletedTasks), rules.TasksPerRank-1)
		out.SkillData[cat] = sp
	}

	inv := out.Inventory[:0]
	for _, it := range out.Inventory {
		if it.Quantity > 0 {
			inv = append(inv, it)
		}
	}
	out.Inventory = inv
	return out
}
