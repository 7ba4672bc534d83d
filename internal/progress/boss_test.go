package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttackBoss_ChargesAttacker(t *testing.T) {
	e := newTestEngine()
	u := DefaultUserState(e.Rules)
	b := DefaultBoss()

	nu, nb, out, err := e.AttackBoss(u, b, testNow)
	require.NoError(t, err)
	assert.Equal(t, 98, nu.Vitals.HP)
	assert.Equal(t, 90, nu.Vitals.MP)
	assert.InDelta(t, 95, nb.HP, 1e-9)
	assert.InDelta(t, 5, out.BossDamage, 1e-9)
	assert.False(t, out.BossDefeated)
	assert.Equal(t, 100, u.Vitals.MP, "input must not be mutated")
}

func TestAttackBoss_NotEnoughMP(t *testing.T) {
	e := newTestEngine()
	u := DefaultUserState(e.Rules)
	u.Vitals.MP = 9

	nu, nb, _, err := e.AttackBoss(u, DefaultBoss(), testNow)
	require.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Equal(t, u.Vitals, nu.Vitals)
	assert.Equal(t, DefaultBoss(), nb)
}

func TestAttackBoss_DefeatCreditedOnce(t *testing.T) {
	e := newTestEngine()
	b := DefaultBoss()
	b.HP = 5

	// Both attackers read the same boss; the store serializes them so the
	// second one sees the record the first one wrote.
	u1 := DefaultUserState(e.Rules)
	u2 := DefaultUserState(e.Rules)

	nu1, after, out, err := e.AttackBoss(u1, b, testNow)
	require.NoError(t, err)
	assert.True(t, out.BossDefeated)
	assert.Equal(t, u1.Gold+1000, nu1.Gold)
	assert.Equal(t, 1, after.Defeats)
	require.NotNil(t, after.RespawnTime)
	assert.True(t, after.RespawnTime.Equal(testNow.Add(48*time.Hour)))
	assert.InDelta(t, b.MaxHP, after.HP, 1e-9)

	nu2, again, _, err := e.AttackBoss(u2, after, testNow)
	require.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Equal(t, u2.Gold, nu2.Gold)
	assert.Equal(t, 1, again.Defeats)
}

func TestBossState_RespawnElapses(t *testing.T) {
	b := DefaultBoss()
	respawn := testNow.Add(time.Hour)
	b.RespawnTime = &respawn
	b.HP = 0

	assert.False(t, b.Alive(testNow))
	later := b.Refresh(testNow.Add(2 * time.Hour))
	assert.True(t, later.Alive(testNow.Add(2*time.Hour)))
	assert.Nil(t, later.RespawnTime)
	assert.InDelta(t, later.MaxHP, later.HP, 1e-9)
}

func TestTimersAt(t *testing.T) {
	s := DefaultUserState(DefaultRules())
	deadline := testNow.Add(90 * time.Minute)
	s.TaskDeadline = &deadline
	b := DefaultBoss()
	past := testNow.Add(-time.Minute)
	b.RespawnTime = &past

	tm := TimersAt(s, b, testNow)
	assert.Equal(t, 90*time.Minute, tm.Deadline)
	assert.Zero(t, tm.Penalty)
	assert.Zero(t, tm.BossRespawn)
}
