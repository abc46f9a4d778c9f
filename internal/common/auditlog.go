package common

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EditEntry captures one applied edit plan: which database was rewritten,
// from which plan, and the content hashes tying the entry to the exact
// input and output bytes.
type EditEntry struct {
	Plan         string    `json:"plan"`
	Input        string    `json:"input"`
	Output       string    `json:"output"`
	Edits        int       `json:"edits"`
	BeforeSha256 string    `json:"beforeSha256"`
	AfterSha256  string    `json:"afterSha256"`
	Ts           time.Time `json:"ts"`
}

// EditLog provides append-only access to a JSONL audit log.
type EditLog struct {
	path string
	mu   sync.Mutex
}

// NewEditLog returns an EditLog that writes to the provided path.
func NewEditLog(path string) *EditLog {
	return &EditLog{path: path}
}

// Path returns the backing file path for the log.
func (l *EditLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a new entry to the audit log. Entries are serialized as
// JSON objects, one per line, to make downstream consumption and replay
// straightforward.
func (l *EditLog) Append(entry EditEntry) error {
	if l == nil {
		return errors.New("nil edit log")
	}
	if entry.Output == "" {
		return errors.New("edit entry missing output path")
	}
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadEditLog loads every entry from the supplied JSONL file.
func ReadEditLog(path string) ([]EditEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var entries []EditEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry EditEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode edit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
