package progress

import "time"

const DefaultBossID = "shadow_lord"

// BossState is the single record shared by every player.
type BossState struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	MaxHP       float64    `json:"maxHp"`
	HP          float64    `json:"hp"`
	RespawnTime *time.Time `json:"respawnTime"`
	Defeats     int        `json:"defeats"`
}

func DefaultBoss() BossState {
	return BossState{
		ID:    DefaultBossID,
		Name:  "Gölge Lordu",
		MaxHP: 100,
		HP:    100,
	}
}

// Alive reports whether the boss can be attacked at now.
func (b BossState) Alive(now time.Time) bool {
	return b.RespawnTime == nil || !b.RespawnTime.After(now)
}

// Refresh returns the boss as it stands at now. An elapsed respawn restores full health.
func (b BossState) Refresh(now time.Time) BossState {
	b.RespawnTime = cloneTime(b.RespawnTime)
	if b.MaxHP <= 0 {
		b.MaxHP = DefaultBoss().MaxHP
	}
	if b.RespawnTime != nil && !b.RespawnTime.After(now) {
		b.RespawnTime = nil
		b.HP = b.MaxHP
	}
	b.HP = min(max(0, b.HP), b.MaxHP)
	if b.HP == 0 && b.RespawnTime == nil {
		b.HP = b.MaxHP
	}
	return b
}

// AttackBoss charges the attacker and damages the shared boss. Callers must run it
// inside the boss store's read-modify-write so a defeat is credited once.
func (e *Engine) AttackBoss(user UserState, boss BossState, now time.Time) (UserState, BossState, Outcome, error) {
	b := boss.Refresh(now)
	if !b.Alive(now) {
		return user, boss, Outcome{}, precondition("%s is resting until it respawns", b.Name)
	}
	if user.Vitals.MP < e.Rules.BossMinMP {
		return user, boss, Outcome{}, precondition("not enough MP: have %d, need %d", user.Vitals.MP, e.Rules.BossMinMP)
	}

	u := user.Clone()
	u.Vitals.HP = clampVital(u.Vitals.HP - e.Rules.BossHPCost)
	u.Vitals.MP = clampVital(u.Vitals.MP - e.Rules.BossMPCost)

	damage := b.MaxHP * e.Rules.BossDamageFraction
	b.HP = max(0, b.HP-damage)

	out := Outcome{BossDamage: damage}
	out.note("Hit %s for %.0f damage.", b.Name, damage)

	if b.HP <= 0 {
		respawn := now.Add(e.Rules.BossRespawn)
		u.Gold += e.Rules.BossDefeatGold
		b.HP = b.MaxHP
		b.RespawnTime = &respawn
		b.Defeats++
		out.BossDefeated = true
		out.GoldDelta = e.Rules.BossDefeatGold
		out.note("%s defeated! +%d gold.", b.Name, e.Rules.BossDefeatGold)
	}
	return u, b, out, nil
}
