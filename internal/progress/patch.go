package progress

import (
	"reflect"
	"time"
)

// Patch names the fields a transition changed. Nil fields are left alone by stores.
// The two timestamps use Set flags because nil is a meaningful value for them.
type Patch struct {
	Gold                      *int
	Level                     *int
	TasksCompletedThisLevel   *int
	TasksRequiredForNextLevel *int
	AttributePoints           *int
	Attributes                *Attributes
	Vitals                    *Vitals
	Tier                      *Tier
	SkillData                 map[SkillCategory]SkillProgress
	Tasks                     []Task
	Inventory                 []InventoryItem

	SetPenaltyEndTime bool
	PenaltyEndTime    *time.Time
	SetTaskDeadline   bool
	TaskDeadline      *time.Time
}

func ptrTo[T any](v T) *T { return &v }

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Diff returns the fields that differ between before and after.
func Diff(before, after UserState) Patch {
	var p Patch
	if before.Gold != after.Gold {
		p.Gold = ptrTo(after.Gold)
	}
	if before.Level != after.Level {
		p.Level = ptrTo(after.Level)
	}
	if before.TasksCompletedThisLevel != after.TasksCompletedThisLevel {
		p.TasksCompletedThisLevel = ptrTo(after.TasksCompletedThisLevel)
	}
	if before.TasksRequiredForNextLevel != after.TasksRequiredForNextLevel {
		p.TasksRequiredForNextLevel = ptrTo(after.TasksRequiredForNextLevel)
	}
	if before.AttributePoints != after.AttributePoints {
		p.AttributePoints = ptrTo(after.AttributePoints)
	}
	if before.Attributes != after.Attributes {
		p.Attributes = ptrTo(after.Attributes)
	}
	if before.Vitals != after.Vitals {
		p.Vitals = ptrTo(after.Vitals)
	}
	if before.Tier != after.Tier {
		p.Tier = ptrTo(after.Tier)
	}
	if !reflect.DeepEqual(nonNilSkills(before.SkillData), nonNilSkills(after.SkillData)) {
		p.SkillData = after.Clone().SkillData
	}
	if !reflect.DeepEqual(nonNil(before.Tasks), nonNil(after.Tasks)) {
		p.Tasks = append([]Task{}, after.Tasks...)
	}
	if !reflect.DeepEqual(nonNil(before.Inventory), nonNil(after.Inventory)) {
		p.Inventory = append([]InventoryItem{}, after.Inventory...)
	}
	if !sameTime(before.PenaltyEndTime, after.PenaltyEndTime) {
		p.SetPenaltyEndTime = true
		p.PenaltyEndTime = cloneTime(after.PenaltyEndTime)
	}
	if !sameTime(before.TaskDeadline, after.TaskDeadline) {
		p.SetTaskDeadline = true
		p.TaskDeadline = cloneTime(after.TaskDeadline)
	}
	return p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilSkills(m map[SkillCategory]SkillProgress) map[SkillCategory]SkillProgress {
	if m == nil {
		return map[SkillCategory]SkillProgress{}
	}
	return m
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Fields()) == 0
}

// Fields lists the changed field names in storage order.
func (p Patch) Fields() []string {
	var f []string
	add := func(ok bool, name string) {
		if ok {
			f = append(f, name)
		}
	}
	add(p.Gold != nil, "gold")
	add(p.Level != nil, "level")
	add(p.TasksCompletedThisLevel != nil, "tasksCompletedThisLevel")
	add(p.TasksRequiredForNextLevel != nil, "tasksRequiredForNextLevel")
	add(p.AttributePoints != nil, "attributePoints")
	add(p.Attributes != nil, "attributes")
	add(p.Vitals != nil, "vitals")
	add(p.Tier != nil, "tier")
	add(p.SkillData != nil, "skillData")
	add(p.Tasks != nil, "tasks")
	add(p.Inventory != nil, "inventory")
	add(p.SetPenaltyEndTime, "penaltyEndTime")
	add(p.SetTaskDeadline, "taskDeadline")
	return f
}

// ApplyTo merges the patch into s and returns the result; s itself is not modified.
func (p Patch) ApplyTo(s UserState) UserState {
	out := s.Clone()
	if p.Gold != nil {
		out.Gold = *p.Gold
	}
	if p.Level != nil {
		out.Level = *p.Level
	}
	if p.TasksCompletedThisLevel != nil {
		out.TasksCompletedThisLevel = *p.TasksCompletedThisLevel
	}
	if p.TasksRequiredForNextLevel != nil {
		out.TasksRequiredForNextLevel = *p.TasksRequiredForNextLevel
	}
	if p.AttributePoints != nil {
		out.AttributePoints = *p.AttributePoints
	}
	if p.Attributes != nil {
		out.Attributes = *p.Attributes
	}
	if p.Vitals != nil {
		out.Vitals = *p.Vitals
	}
	if p.Tier != nil {
		out.Tier = *p.Tier
	}
	if p.SkillData != nil {
		out.SkillData = make(map[SkillCategory]SkillProgress, len(p.SkillData))
		for k, v := range p.SkillData {
			out.SkillData[k] = v
		}
	}
	if p.Tasks != nil {
		out.Tasks = append([]Task{}, p.Tasks...)
	}
	if p.Inventory != nil {
		out.Inventory = append([]InventoryItem{}, p.Inventory...)
	}
	if p.SetPenaltyEndTime {
		out.PenaltyEndTime = cloneTime(p.PenaltyEndTime)
	}
	if p.SetTaskDeadline {
		out.TaskDeadline = cloneTime(p.TaskDeadline)
	}
	return out
}
