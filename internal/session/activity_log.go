package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// ActivityFileName is the fixed name of the append-only activity log.
const ActivityFileName = "activity.jsonl"

var _ ActivitySink = &FileActivitySink{}

type activityRecord struct {
	Time      string         `json:"time"`
	EventType string         `json:"event"`
	UserID    string         `json:"user,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// FileActivitySink appends session activity events as JSON lines to
// dir/activity.jsonl. An existing log is never truncated.
type FileActivitySink struct {
	path string
	mu   sync.Mutex
}

// NewFileActivitySink returns a sink writing to dir/activity.jsonl, creating
// dir if needed.
func NewFileActivitySink(dir string) (*FileActivitySink, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create activity log directory")
	}
	return &FileActivitySink{path: filepath.Join(dir, ActivityFileName)}, nil
}

// Record implements ActivitySink. The file is opened in append mode per
// event; metadata may contain emails, so the log stays owner-only.
func (s *FileActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	record := activityRecord{
		Time:      event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		EventType: string(event.EventType),
		UserID:    event.UserID,
		Metadata:  event.Metadata,
	}
	if len(record.Metadata) == 0 {
		record.Metadata = nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode activity event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open activity log")
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write activity event")
	}
	return nil
}
