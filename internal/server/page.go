package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/progress"

	"github.com/a-h/templ"
)

//go:generate templ generate -f status.templ

type statusData struct {
	Now     time.Time
	Storage string
	Boss    progress.BossState
	Routes  []RouteDoc
}

func (d statusData) bossLine() string {
	if !d.Boss.Alive(d.Now) && d.Boss.RespawnTime != nil {
		return "resting until " + d.Boss.RespawnTime.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%.0f / %.0f HP", d.Boss.HP, d.Boss.MaxHP)
}

func (a *App) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	boss, err := a.Game.Boss(r.Context())
	if err != nil {
		http.Error(w, "boss unavailable", http.StatusServiceUnavailable)
		return
	}
	d := statusData{Now: a.clock.Now(), Storage: a.storage, Boss: boss, Routes: a.Routes.List()}
	templ.Handler(statusPage(d)).ServeHTTP(w, r)
}
