package progress

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	e := NewEngine(DefaultRules(), DefaultCatalog())
	n := 0
	e.NewID = func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
	return e
}

func stateWithTask(e *Engine, d Difficulty, cat SkillCategory) UserState {
	s := DefaultUserState(e.Rules)
	s.Tasks = append(s.Tasks, Task{ID: "task-1", Text: "Run", Difficulty: d, Reward: e.Rules.rewardFor(d), Category: cat})
	return s
}

func apply(t *testing.T, e *Engine, s UserState, ev Event) (UserState, Outcome) {
	t.Helper()
	next, out, err := e.Apply(s, ev, testNow)
	require.NoError(t, err)
	return next, out
}

func TestCreateTask_ArmsDeadlineOnEmptyList(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)

	next, out := apply(t, e, s, CreateTask{Text: "  Run 5km ", Difficulty: DifficultyHard, Category: CategorySpor})

	require.Len(t, next.Tasks, 1)
	assert.Equal(t, "Run 5km", next.Tasks[0].Text)
	assert.Equal(t, 200, next.Tasks[0].Reward)
	assert.False(t, next.Tasks[0].Completed)
	require.NotNil(t, next.TaskDeadline)
	assert.True(t, next.TaskDeadline.Equal(testNow.Add(24*time.Hour)))
	assert.True(t, out.DeadlineArmed)
	assert.Empty(t, s.Tasks, "input must not be mutated")
}

func TestCreateTask_DoesNotRearm(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s, _ = apply(t, e, s, CreateTask{Text: "a", Difficulty: DifficultyEasy, Category: CategoryOther})
	first := *s.TaskDeadline

	later := testNow.Add(3 * time.Hour)
	next, out, err := e.Apply(s, CreateTask{Text: "b", Difficulty: DifficultyEasy, Category: CategoryKitap}, later)
	require.NoError(t, err)
	assert.False(t, out.DeadlineArmed)
	assert.True(t, next.TaskDeadline.Equal(first))

	penalized := DefaultUserState(e.Rules)
	end := testNow.Add(time.Hour)
	penalized.PenaltyEndTime = &end
	next, out = apply(t, e, penalized, CreateTask{Text: "c", Difficulty: DifficultyEasy, Category: CategoryHack})
	assert.Nil(t, next.TaskDeadline)
	assert.False(t, out.DeadlineArmed)
}

func TestCreateTask_InvalidInput(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	cases := map[string]CreateTask{
		"empty text":         {Text: "   ", Difficulty: DifficultyEasy, Category: CategorySpor},
		"unknown difficulty": {Text: "x", Difficulty: "medium", Category: CategorySpor},
		"unknown category":   {Text: "x", Difficulty: DifficultyEasy, Category: "cooking"},
		"too long":           {Text: stringOf('a', 201), Difficulty: DifficultyEasy, Category: CategorySpor},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			next, _, err := e.Apply(s, ev, testNow)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, KindInvalidInput, KindOf(err))
			assert.Empty(t, cmp.Diff(s, next))
		})
	}
}

func stringOf(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}

func TestToggleTask_NotFound(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	_, _, err := e.Apply(s, ToggleTask{TaskID: "missing"}, testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestToggleTask_GrantsGoldAndClearsDeadline(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategoryKitap)
	deadline := testNow.Add(time.Hour)
	s.TaskDeadline = &deadline

	next, out := apply(t, e, s, ToggleTask{TaskID: "task-1"})

	assert.Equal(t, 200, next.Gold)
	assert.Equal(t, 50, out.GoldDelta)
	assert.Equal(t, 1, next.TasksCompletedThisLevel)
	assert.Equal(t, SkillProgress{CompletedTasks: 1}, next.SkillData[CategoryKitap])
	assert.Nil(t, next.TaskDeadline)
}

func TestToggleTask_LevelUpArithmetic(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategoryOther)
	s.Level = 4
	s.TasksRequiredForNextLevel = 36
	s.TasksCompletedThisLevel = 35

	next, out := apply(t, e, s, ToggleTask{TaskID: "task-1"})

	assert.True(t, out.LevelUp)
	assert.Equal(t, 5, next.Level)
	assert.Equal(t, 0, next.TasksCompletedThisLevel)
	assert.Equal(t, 37, next.TasksRequiredForNextLevel)
	assert.Equal(t, 1, next.AttributePoints)
	assert.Equal(t, TierForLevel(5), next.Tier)
}

func TestToggleTask_LevelUpChangesTier(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategoryOther)
	s.Level = 19
	s.Tier = TierForLevel(19)
	s.TasksRequiredForNextLevel = 51
	s.TasksCompletedThisLevel = 50

	next, _ := apply(t, e, s, ToggleTask{TaskID: "task-1"})
	assert.Equal(t, Tier("D"), next.Tier)
}

func TestToggleTask_HPZeroReducesReward(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyHard, CategorySpor)
	s.Gold = 0
	s.Vitals.HP = 0

	next, out := apply(t, e, s, ToggleTask{TaskID: "task-1"})

	assert.Equal(t, 20, next.Gold)
	assert.True(t, out.HPPenalty)
	assert.Equal(t, 1, next.TasksCompletedThisLevel)
}

func TestToggleTask_MPZeroFreezesLevelProgress(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyHard, CategorySpor)
	s.Vitals.MP = 0

	next, out := apply(t, e, s, ToggleTask{TaskID: "task-1"})

	assert.True(t, out.MPFrozen)
	assert.Equal(t, 350, next.Gold)
	assert.Equal(t, 0, next.TasksCompletedThisLevel)
	assert.Equal(t, 1, next.SkillData[CategorySpor].CompletedTasks)
}

func TestToggleTask_PenaltySuppressesRewards(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyHard, CategoryHack)
	end := testNow.Add(2 * time.Hour)
	s.PenaltyEndTime = &end

	next, out := apply(t, e, s, ToggleTask{TaskID: "task-1"})

	assert.True(t, out.PenaltyBlocked)
	assert.Equal(t, s.Gold, next.Gold)
	assert.Equal(t, 0, out.GoldDelta)
	assert.Equal(t, 0, next.TasksCompletedThisLevel)
	assert.True(t, next.Tasks[0].Completed)
	assert.Equal(t, 1, next.SkillData[CategoryHack].CompletedTasks, "skill still advances during a penalty")
}

func TestToggleTask_OutcomeOrder(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyHard, CategorySpor)
	s.Vitals.HP = 0
	s.Vitals.MP = 0

	_, out := apply(t, e, s, ToggleTask{TaskID: "task-1"})
	require.Len(t, out.Messages, 3)
	assert.Contains(t, out.Messages[0], "HP")
	assert.Contains(t, out.Messages[1], "MP")
	assert.Contains(t, out.Messages[2], "gold")
}

func TestToggleTask_RoundTripRestoresSkill(t *testing.T) {
	e := newTestEngine()
	for _, start := range []SkillProgress{
		{CompletedTasks: 0, RankIndex: 0},
		{CompletedTasks: 7, RankIndex: 3},
		{CompletedTasks: 19, RankIndex: 2},
		{CompletedTasks: 18, RankIndex: 9},
	} {
		s := stateWithTask(e, DifficultyEasy, CategoryWingChun)
		s.SkillData[CategoryWingChun] = start

		done, _ := apply(t, e, s, ToggleTask{TaskID: "task-1"})
		undone, _ := apply(t, e, done, ToggleTask{TaskID: "task-1"})

		assert.Equal(t, start, undone.SkillData[CategoryWingChun], "start %+v", start)
		assert.Equal(t, s.Gold, undone.Gold)
		assert.Equal(t, s.TasksCompletedThisLevel, undone.TasksCompletedThisLevel)
	}
}

func TestToggleTask_RankRollover(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategoryIslam)
	s.SkillData[CategoryIslam] = SkillProgress{CompletedTasks: 19, RankIndex: 4}

	next, _ := apply(t, e, s, ToggleTask{TaskID: "task-1"})
	assert.Equal(t, SkillProgress{CompletedTasks: 0, RankIndex: 5}, next.SkillData[CategoryIslam])

	s.SkillData[CategoryIslam] = SkillProgress{CompletedTasks: 19, RankIndex: 9}
	next, _ = apply(t, e, s, ToggleTask{TaskID: "task-1"})
	assert.Equal(t, SkillProgress{CompletedTasks: 19, RankIndex: 9}, next.SkillData[CategoryIslam])
}

func TestToggleTask_UncompleteNeverLevelsDown(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyHard, CategoryOther)
	s.Tasks[0].Completed = true
	s.Level = 3
	s.Gold = 120

	next, out := apply(t, e, s, ToggleTask{TaskID: "task-1"})
	assert.Equal(t, 3, next.Level)
	assert.Equal(t, 0, next.TasksCompletedThisLevel)
	assert.Equal(t, 0, next.Gold)
	assert.Equal(t, -120, out.GoldDelta)
}

func TestDeleteTask_ReversesCompletedReward(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategoryKitap)
	s, _ = apply(t, e, s, ToggleTask{TaskID: "task-1"})
	require.Equal(t, 200, s.Gold)

	next, _ := apply(t, e, s, DeleteTask{TaskID: "task-1"})
	assert.Empty(t, next.Tasks)
	assert.Equal(t, 150, next.Gold)
	assert.Equal(t, SkillProgress{}, next.SkillData[CategoryKitap])

	e.Rules.ReverseOnDelete = false
	next, _ = apply(t, e, s, DeleteTask{TaskID: "task-1"})
	assert.Equal(t, 200, next.Gold)

	_, _, err := e.Apply(next, DeleteTask{TaskID: "task-1"}, testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluateDeadline_StartsPenalty(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategorySpor)
	past := testNow.Add(-time.Minute)
	s.TaskDeadline = &past

	next, out := apply(t, e, s, EvaluateDeadline{})

	assert.True(t, out.PenaltyStarted)
	require.NotNil(t, next.PenaltyEndTime)
	assert.True(t, next.PenaltyEndTime.Equal(testNow.Add(24*time.Hour)))
	assert.Nil(t, next.TaskDeadline)

	again, out := apply(t, e, next, EvaluateDeadline{})
	assert.False(t, out.PenaltyStarted)
	assert.Empty(t, cmp.Diff(next, again))
}

func TestEvaluateDeadline_ClearsWithoutIncompleteTasks(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategorySpor)
	s.Tasks[0].Completed = true
	past := testNow.Add(-time.Minute)
	s.TaskDeadline = &past
	ended := testNow.Add(-time.Second)
	s.PenaltyEndTime = &ended

	next, out := apply(t, e, s, EvaluateDeadline{})
	assert.False(t, out.PenaltyStarted)
	assert.Nil(t, next.TaskDeadline)
	assert.Nil(t, next.PenaltyEndTime)
}

func TestEvaluateDeadline_FutureDeadlineUntouched(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyEasy, CategorySpor)
	future := testNow.Add(time.Hour)
	s.TaskDeadline = &future

	next, _ := apply(t, e, s, EvaluateDeadline{})
	assert.Nil(t, next.PenaltyEndTime)
	assert.True(t, next.TaskDeadline.Equal(future))
}

func TestReportBehavior_Clamps(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s.Vitals.MP = 30

	next, _ := apply(t, e, s, ReportBehavior{ActionID: "mp_social"})
	assert.Equal(t, 0, next.Vitals.MP)

	end := testNow.Add(time.Hour)
	next.PenaltyEndTime = &end
	next, _ = apply(t, e, next, ReportBehavior{ActionID: "hp_sleep"})
	assert.Equal(t, 94, next.Vitals.HP, "reports apply during a penalty")

	_, _, err := e.Apply(s, ReportBehavior{ActionID: "nope"}, testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPurchaseItem(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s.Gold = 250

	next, out := apply(t, e, s, PurchaseItem{ItemID: ItemPotionEnergy})
	assert.Equal(t, 150, next.Gold)
	assert.Equal(t, -100, out.GoldDelta)
	next, _ = apply(t, e, next, PurchaseItem{ItemID: ItemPotionEnergy})
	assert.Equal(t, []InventoryItem{{ItemID: ItemPotionEnergy, Quantity: 2}}, next.Inventory)
	assert.Equal(t, 50, next.Gold)
}

func TestPurchaseItem_InsufficientGold(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s.Gold = 50

	next, _, err := e.Apply(s, PurchaseItem{ItemID: ItemPotionEnergy}, testNow)
	require.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Empty(t, cmp.Diff(s, next))
}

func TestPurchaseItem_BlockedByPenalty(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	end := testNow.Add(time.Hour)
	s.PenaltyEndTime = &end

	_, _, err := e.Apply(s, PurchaseItem{ItemID: ItemPotionEnergy}, testNow)
	require.ErrorIs(t, err, ErrPreconditionFailed)

	_, _, err = e.Apply(s, PurchaseItem{ItemID: "ghost"}, testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUseItem_ConsumesLastUnit(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s.Inventory = []InventoryItem{{ItemID: ItemPotionEnergy, Quantity: 1}}
	s.Vitals.HP = 50

	next, out := apply(t, e, s, UseItem{ItemID: ItemPotionEnergy})
	assert.Equal(t, 60, next.Vitals.HP)
	assert.Empty(t, next.Inventory)
	assert.True(t, out.ItemConsumed)
}

func TestUseItem_Rejections(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s.Inventory = []InventoryItem{{ItemID: ItemPotionMind, Quantity: 1}}

	_, _, err := e.Apply(s, UseItem{ItemID: ItemPotionMind}, testNow)
	require.ErrorIs(t, err, ErrPreconditionFailed, "mp already full")

	_, _, err = e.Apply(s, UseItem{ItemID: ItemPotionEnergy}, testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUseItem_NoEffectItemIsKept(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s.Inventory = []InventoryItem{{ItemID: ItemScrollCinema, Quantity: 1}}

	next, out := apply(t, e, s, UseItem{ItemID: ItemScrollCinema})
	assert.False(t, out.ItemConsumed)
	assert.Equal(t, s.Inventory, next.Inventory)
	assert.NotEmpty(t, out.Message())
}

func TestDiscardItem(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)
	s.Inventory = []InventoryItem{{ItemID: ItemBookWisdom, Quantity: 2}}

	next, _ := apply(t, e, s, DiscardItem{ItemID: ItemBookWisdom})
	assert.Equal(t, 1, next.Quantity(ItemBookWisdom))
	next, _ = apply(t, e, next, DiscardItem{ItemID: ItemBookWisdom})
	assert.Empty(t, next.Inventory)

	_, _, err := e.Apply(next, DiscardItem{ItemID: ItemBookWisdom}, testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSpendAttributePoint(t *testing.T) {
	e := newTestEngine()
	s := DefaultUserState(e.Rules)

	_, _, err := e.Apply(s, SpendAttributePoint{Attribute: AttributeSTR}, testNow)
	require.ErrorIs(t, err, ErrPreconditionFailed)

	s.AttributePoints = 1
	_, _, err = e.Apply(s, SpendAttributePoint{Attribute: "luck"}, testNow)
	require.ErrorIs(t, err, ErrInvalidInput)

	next, _ := apply(t, e, s, SpendAttributePoint{Attribute: AttributeINT})
	assert.Equal(t, 0, next.AttributePoints)
	assert.Equal(t, 1, next.Attributes.Get(AttributeINT))
}

func TestResetProgress(t *testing.T) {
	e := newTestEngine()
	s := stateWithTask(e, DifficultyHard, CategorySpor)
	s.Gold = 9000
	s.Level = 12

	_, _, err := e.Apply(s, ResetProgress{}, testNow)
	require.ErrorIs(t, err, ErrForbidden)

	next, _ := apply(t, e, s, ResetProgress{ActorIsAdmin: true})
	assert.Empty(t, cmp.Diff(DefaultUserState(e.Rules), next))
}

func TestApply_NilEvent(t *testing.T) {
	e := newTestEngine()
	_, _, err := e.Apply(DefaultUserState(e.Rules), nil, testNow)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestProperty_VitalsAndGoldStayInRange(t *testing.T) {
	e := newTestEngine()
	rng := rand.New(rand.NewSource(7))
	s := DefaultUserState(e.Rules)
	for i := 0; i < 5; i++ {
		s, _ = apply(t, e, s, CreateTask{Text: "task", Difficulty: DifficultyHard, Category: CategorySpor})
	}
	reports := []string{"hp_sleep", "hp_food", "hp_profanity", "mp_work", "mp_social"}
	items := []string{ItemPotionEnergy, ItemPotionMind}

	for step := 0; step < 2000; step++ {
		var ev Event
		switch rng.Intn(5) {
		case 0:
			ev = ReportBehavior{ActionID: reports[rng.Intn(len(reports))]}
		case 1:
			ev = PurchaseItem{ItemID: items[rng.Intn(len(items))]}
		case 2:
			ev = UseItem{ItemID: items[rng.Intn(len(items))]}
		default:
			ev = ToggleTask{TaskID: s.Tasks[rng.Intn(len(s.Tasks))].ID}
		}
		next, _, err := e.Apply(s, ev, testNow)
		if err != nil {
			assert.NotEmpty(t, KindOf(err))
			continue
		}
		s = next
		require.GreaterOrEqual(t, s.Gold, 0)
		require.GreaterOrEqual(t, s.Vitals.HP, 0)
		require.LessOrEqual(t, s.Vitals.HP, MaxVital)
		require.GreaterOrEqual(t, s.Vitals.MP, 0)
		require.LessOrEqual(t, s.Vitals.MP, MaxVital)
		require.Equal(t, TierForLevel(s.Level), s.Tier)
		for _, it := range s.Inventory {
			require.Positive(t, it.Quantity)
		}
	}
}
