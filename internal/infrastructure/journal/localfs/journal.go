// Package localfs backs the activity journal with a JSONL file. Each entry
// is one marshalled line written with a single O_APPEND write, so
// concurrent appenders never interleave partial records.
package localfs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

type Journal struct {
	path string

	mu   sync.Mutex
	file *os.File
}

func New(path string) (*Journal, error) {
	if path == "" {
		path = "./data/activity.jsonl"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{path: path, file: file}, nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

func (j *Journal) Append(_ context.Context, e domain.ActivityEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal activity entry: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

// Recent returns the last entries, newest first.
func (j *Journal) Recent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.ActivityEntry{}, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []domain.ActivityEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e domain.ActivityEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			// A torn trailing line from a crashed writer is skipped,
			// not fatal.
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}

	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]domain.ActivityEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
