package ops

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/player"
	"github.com/xmuzan/samplepomodoro/internal/progress"
	"github.com/xmuzan/samplepomodoro/internal/world"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newStores(t *testing.T) Stores {
	t.Helper()
	dir := t.TempDir()
	players, err := player.NewFileRepo(dir, progress.DefaultRules())
	require.NoError(t, err)
	bosses, err := world.NewFileRepo(dir, progress.DefaultBoss())
	require.NoError(t, err)
	return Stores{Players: players, Bosses: bosses, BossIDs: []string{progress.DefaultBossID}}
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rules := progress.DefaultRules()
	src := newStores(t)

	ayse := progress.DefaultUserState(rules)
	ayse.Gold = 900
	ayse.Inventory = []progress.InventoryItem{{ItemID: progress.ItemPotionMind, Quantity: 2}}
	require.NoError(t, src.Players.Put(ctx, "ayse", ayse))
	require.NoError(t, src.Players.Put(ctx, "mert", progress.DefaultUserState(rules)))

	boss := progress.DefaultBoss()
	boss.HP = 40
	boss.Defeats = 3
	require.NoError(t, src.Bosses.Put(ctx, boss))

	path := filepath.Join(t.TempDir(), "exports", "levelup.jsonl.gz")
	sum, err := ExportFile(ctx, path, src, testNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Players: 2, Bosses: 1}, sum)

	dst := newStores(t)
	sum, err = ImportFile(ctx, path, dst, rules)
	require.NoError(t, err)
	assert.Equal(t, Summary{Players: 2, Bosses: 1}, sum)

	got, err := dst.Players.Load(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, 900, got.Gold)
	assert.Equal(t, 2, got.Quantity(progress.ItemPotionMind))

	b, err := dst.Bosses.Get(ctx, progress.DefaultBossID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, b.HP)
	assert.Equal(t, 3, b.Defeats)
}

func gzipLines(t *testing.T, lines ...string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, l := range lines {
		_, err := gz.Write([]byte(l + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	return &buf
}

func TestImport_Rejects(t *testing.T) {
	ctx := context.Background()
	rules := progress.DefaultRules()

	_, err := Import(ctx, bytes.NewBufferString("not gzip"), newStores(t), rules)
	require.Error(t, err)

	_, err = Import(ctx, gzipLines(t, `{"kind":"header","version":9}`), newStores(t), rules)
	require.ErrorContains(t, err, "unsupported archive")

	_, err = Import(ctx, gzipLines(t, `{"kind":"header","version":1}`, `{"kind":"player"}`), newStores(t), rules)
	require.ErrorContains(t, err, "line 2")

	_, err = Import(ctx, gzipLines(t, `{"kind":"header","version":1}`, `{"kind":"dragon"}`), newStores(t), rules)
	require.ErrorContains(t, err, "unknown record kind")
}

func TestImport_NormalizesRecords(t *testing.T) {
	ctx := context.Background()
	st := newStores(t)
	archive := gzipLines(t,
		`{"kind":"header","version":1}`,
		`{"kind":"player","username":"ayse","state":{"gold":-5,"vitals":{"hp":300,"mp":50,"ir":100}}}`,
	)
	_, err := Import(ctx, archive, st, progress.DefaultRules())
	require.NoError(t, err)

	got, err := st.Players.Load(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Gold)
	assert.Equal(t, 100, got.Vitals.HP)
	assert.Equal(t, 50, got.Vitals.MP)
}
