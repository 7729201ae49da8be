package session_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensemblekit/atril/internal/session"
)

func readActivityLines(t *testing.T, dir string) []map[string]any {
	t.Helper()

	f, err := os.Open(filepath.Join(dir, session.ActivityFileName))
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		lines = append(lines, record)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestFileActivitySinkAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	sink, err := session.NewFileActivitySink(dir)
	require.NoError(t, err)

	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Record(context.Background(), session.ActivityEvent{
		EventType:  session.ActivityEventSignInSuccess,
		UserID:     "user-1",
		Metadata:   map[string]any{"email": "clara@ensemble.example"},
		OccurredAt: occurred,
	}))
	require.NoError(t, sink.Record(context.Background(), session.ActivityEvent{
		EventType:  session.ActivityEventSignOut,
		UserID:     "user-1",
		OccurredAt: occurred.Add(time.Minute),
	}))

	lines := readActivityLines(t, dir)
	require.Len(t, lines, 2)

	assert.Equal(t, string(session.ActivityEventSignInSuccess), lines[0]["event"])
	assert.Equal(t, "user-1", lines[0]["user"])
	meta, ok := lines[0]["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "clara@ensemble.example", meta["email"])

	assert.Equal(t, string(session.ActivityEventSignOut), lines[1]["event"])
	assert.NotContains(t, lines[1], "metadata", "empty metadata is omitted")
}

func TestFileActivitySinkNeverTruncates(t *testing.T) {
	dir := t.TempDir()

	first, err := session.NewFileActivitySink(dir)
	require.NoError(t, err)
	require.NoError(t, first.Record(context.Background(), session.ActivityEvent{
		EventType:  session.ActivityEventSignInSuccess,
		OccurredAt: time.Now(),
	}))

	// A new process appends to the same log.
	second, err := session.NewFileActivitySink(dir)
	require.NoError(t, err)
	require.NoError(t, second.Record(context.Background(), session.ActivityEvent{
		EventType:  session.ActivityEventSignOut,
		OccurredAt: time.Now(),
	}))

	assert.Len(t, readActivityLines(t, dir), 2)
}

func TestFileActivitySinkPermissions(t *testing.T) {
	dir := t.TempDir()
	sink, err := session.NewFileActivitySink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.Record(context.Background(), session.ActivityEvent{
		EventType:  session.ActivityEventSignInFailure,
		OccurredAt: time.Now(),
	}))

	info, err := os.Stat(filepath.Join(dir, session.ActivityFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
