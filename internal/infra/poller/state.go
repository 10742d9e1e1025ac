package poller

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// State is the durable polling progress record. LastProcessedCreatedAt is the
// watermark: events strictly newer than it are still unseen.
type State struct {
	LastProcessedCreatedAt int64  `json:"lastProcessedCreatedAt"`
	CronExpression         string `json:"cronExpression"`
}

// StateStorage owns the poller state file. The file is replaced atomically on
// every write (write-new-then-rename), so a crash can leave the old state
// behind but never a partial one.
type StateStorage struct {
	mu    sync.Mutex
	path  string
	state State
}

// NewStateStorage loads the state file, seeding it with defaults when it does
// not exist yet. A corrupt or incomplete file is a startup error, not
// something to silently repair.
func NewStateStorage(path string, defaults State) (*StateStorage, error) {
	s := &StateStorage{path: path, state: defaults}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if defaults.CronExpression == "" {
			return nil, fmt.Errorf("poller state defaults need a cron expression")
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("seed poller state file: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read poller state file: %w", err)
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(loaded.CronExpression) == "" {
		return nil, fmt.Errorf("%s: cronExpression must be a non-empty string", path)
	}
	if loaded.LastProcessedCreatedAt < 0 {
		return nil, fmt.Errorf("%s: lastProcessedCreatedAt must not be negative", path)
	}

	s.state = loaded
	return s, nil
}

func (s *StateStorage) LastProcessedCreatedAt() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastProcessedCreatedAt
}

func (s *StateStorage) CronExpression() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CronExpression
}

// UpdateLastProcessed advances the cursor. The cursor never moves backward.
func (s *StateStorage) UpdateLastProcessed(timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timestamp < s.state.LastProcessedCreatedAt {
		return fmt.Errorf("cursor may not move backward: %d < %d", timestamp, s.state.LastProcessedCreatedAt)
	}

	s.state.LastProcessedCreatedAt = timestamp
	return s.save()
}

func (s *StateStorage) UpdateCronExpression(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return fmt.Errorf("cron expression must be a non-empty string")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CronExpression = expr
	return s.save()
}

func (s *StateStorage) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
