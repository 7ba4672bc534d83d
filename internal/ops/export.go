package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/player"
	"github.com/xmuzan/samplepomodoro/internal/progress"
	"github.com/xmuzan/samplepomodoro/internal/world"

	"github.com/klauspost/compress/gzip"
)

const archiveVersion = 1

const (
	kindHeader = "header"
	kindPlayer = "player"
	kindBoss   = "boss"
)

// record is one line of an export archive.
type record struct {
	Kind       string              `json:"kind"`
	Version    int                 `json:"version,omitempty"`
	ExportedAt *time.Time          `json:"exportedAt,omitempty"`
	Username   string              `json:"username,omitempty"`
	State      *progress.UserState `json:"state,omitempty"`
	Boss       *progress.BossState `json:"boss,omitempty"`
}

type Summary struct {
	Players int `json:"players"`
	Bosses  int `json:"bosses"`
}

// Stores is what export and import read from and write to.
type Stores struct {
	Players player.Repo
	Bosses  world.BossRepo
	BossIDs []string
}

// Export writes a gzip compressed JSON-lines archive of every player record and the listed bosses.
func Export(ctx context.Context, w io.Writer, st Stores, now time.Time) (Summary, error) {
	var sum Summary
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)

	at := now.UTC()
	if err := enc.Encode(record{Kind: kindHeader, Version: archiveVersion, ExportedAt: &at}); err != nil {
		return sum, err
	}

	names, err := st.Players.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("list players: %w", err)
	}
	for _, name := range names {
		us, err := st.Players.Load(ctx, name)
		if err != nil {
			return sum, fmt.Errorf("load %s: %w", name, err)
		}
		if err := enc.Encode(record{Kind: kindPlayer, Username: name, State: &us}); err != nil {
			return sum, err
		}
		sum.Players++
	}

	for _, id := range st.BossIDs {
		b, err := st.Bosses.Get(ctx, id)
		if errors.Is(err, progress.ErrNotFound) {
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("load boss %s: %w", id, err)
		}
		if err := enc.Encode(record{Kind: kindBoss, Boss: &b}); err != nil {
			return sum, err
		}
		sum.Bosses++
	}
	return sum, gz.Close()
}

// Import replaces stored records with the ones in the archive. Records not in
// the archive are left alone.
func Import(ctx context.Context, r io.Reader, st Stores, rules progress.Rules) (Summary, error) {
	var sum Summary
	gz, err := gzip.NewReader(r)
	if err != nil {
		return sum, fmt.Errorf("open archive: %w", err)
	}
	defer gz.Close()

	dec := json.NewDecoder(bufio.NewReader(gz))
	var head record
	if err := dec.Decode(&head); err != nil {
		return sum, fmt.Errorf("read header: %w", err)
	}
	if head.Kind != kindHeader || head.Version != archiveVersion {
		return sum, fmt.Errorf("unsupported archive (kind %q, version %d)", head.Kind, head.Version)
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		var rec record
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", line, err)
		}

		switch rec.Kind {
		case kindPlayer:
			if strings.TrimSpace(rec.Username) == "" || rec.State == nil {
				return sum, fmt.Errorf("line %d: player record needs username and state", line)
			}
			if err := st.Players.Put(ctx, rec.Username, progress.Normalize(*rec.State, rules.WithDefaults())); err != nil {
				return sum, fmt.Errorf("line %d: %w", line, err)
			}
			sum.Players++
		case kindBoss:
			if rec.Boss == nil || rec.Boss.ID == "" {
				return sum, fmt.Errorf("line %d: boss record needs an id", line)
			}
			if err := st.Bosses.Put(ctx, *rec.Boss); err != nil {
				return sum, fmt.Errorf("line %d: %w", line, err)
			}
			sum.Bosses++
		default:
			return sum, fmt.Errorf("line %d: unknown record kind %q", line, rec.Kind)
		}
	}
	return sum, nil
}

// ExportFile writes the archive next to path and renames it into place.
func ExportFile(ctx context.Context, path string, st Stores, now time.Time) (Summary, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" || path == "." {
		return Summary{}, fmt.Errorf("archive path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Summary{}, err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return Summary{}, err
	}
	sum, err := Export(ctx, f, st, now)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return Summary{}, err
	}
	return sum, os.Rename(tmp, path)
}

func ImportFile(ctx context.Context, path string, st Stores, rules progress.Rules) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	return Import(ctx, f, st, rules)
}
