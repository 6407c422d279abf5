package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ProcessedLog is an append-only file of message ids, one per line.
type ProcessedLog struct {
	mu   sync.Mutex
	path string
}

func NewProcessedLog(path string) *ProcessedLog {
	if path == "" {
		path = filepath.Join("log", "processed_ids.txt")
	}
	return &ProcessedLog{path: path}
}

// Contains reports whether id has been appended before. A missing file means no.
func (l *ProcessedLog) Contains(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "open processed log")
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if strings.TrimSpace(s.Text()) == id {
			return true, nil
		}
	}
	return false, errors.Wrap(s.Err(), "scan processed log")
}

func (l *ProcessedLog) Append(id string) error {
	if strings.ContainsAny(id, "\r\n") || strings.TrimSpace(id) == "" {
		return errors.Errorf("invalid id %q", id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Wrap(err, "create log dir")
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open processed log")
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s\n", id)
	return errors.Wrap(err, "append processed id")
}
