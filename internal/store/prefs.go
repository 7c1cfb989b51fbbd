package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const prefsFileName = "prefs.json"

// Prefs is the small set of user choices restored on the next launch.
// Empty fields mean "use the built-in default" (no board, filter all, sort created).
//
// It is best effort: a missing or corrupted file loads as empty prefs.
type Prefs struct {
	Version int `json:"version"`

	Board        string `json:"board,omitempty"`
	Name         string `json:"name,omitempty"`
	StatusFilter string `json:"statusFilter,omitempty"`
	SortBy       string `json:"sortBy,omitempty"`
}

// PrefsStore persists Prefs as JSON inside Dir.
type PrefsStore struct {
	Dir string
}

func (s PrefsStore) path() string {
	return filepath.Join(s.Dir, prefsFileName)
}

func (s PrefsStore) Load() (*Prefs, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &Prefs{Version: 1}, nil
	}
	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Prefs{Version: 1}, nil
		}
		return nil, err
	}
	var p Prefs
	if err := json.Unmarshal(b, &p); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &Prefs{Version: 1}, nil
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return &p, nil
}

func (s PrefsStore) Save(p *Prefs) error {
	if p == nil {
		return nil
	}
	if strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	if p.Version == 0 {
		p.Version = 1
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, "prefs.json.*.tmp", s.path(), b, 0o644)
}

// Update loads, applies fn and saves in one step.
func (s PrefsStore) Update(fn func(p *Prefs)) error {
	p, err := s.Load()
	if err != nil {
		return err
	}
	fn(p)
	return s.Save(p)
}
