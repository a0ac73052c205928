package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// mockLogWriter is a test implementation of LogWriter.
type mockLogWriter struct {
	mu      sync.Mutex
	batches [][]LogEntry
	err     error
}

func (m *mockLogWriter) WriteBatch(ctx context.Context, entries []LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	// Make a copy of entries to avoid race conditions
	batch := make([]LogEntry, len(entries))
	copy(batch, entries)
	m.batches = append(m.batches, batch)

	return nil
}

func (m *mockLogWriter) GetBatches() [][]LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

func (m *mockLogWriter) TotalEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, batch := range m.batches {
		total += len(batch)
	}
	return total
}

func TestFileSink_Batching(t *testing.T) {
	writer := &mockLogWriter{}
	sink := NewFileSink(FileSinkConfig{
		Writer:        writer,
		BufferSize:    100,
		BatchSize:     10,
		FlushInterval: 100 * time.Millisecond,
	})
	defer sink.Close()

	// Write 25 entries (should create 2 full batches of 10, leaving 5 buffered)
	for i := 0; i < 25; i++ {
		sink.Write(LogEntry{
			Timestamp: time.Now(),
			Level:     "info",
			Component: "test",
			Message:   "test message",
		})
	}

	// Give time for batches to be written
	time.Sleep(50 * time.Millisecond)

	batches := writer.GetBatches()
	if len(batches) != 2 {
		t.Errorf("Expected 2 batches, got %d", len(batches))
	}

	for i, batch := range batches {
		if len(batch) != 10 {
			t.Errorf("Batch %d: expected 10 entries, got %d", i, len(batch))
		}
	}

	// Flush should write the remaining 5
	ctx := context.Background()
	if err := sink.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	batches = writer.GetBatches()
	if len(batches) != 3 {
		t.Errorf("After flush: expected 3 batches, got %d", len(batches))
	}

	if total := writer.TotalEntries(); total != 25 {
		t.Errorf("Expected 25 total entries, got %d", total)
	}
}

func TestFileSink_CloseDrainsEntries(t *testing.T) {
	writer := &mockLogWriter{}
	sink := NewFileSink(FileSinkConfig{
		Writer:        writer,
		BufferSize:    100,
		BatchSize:     50,
		FlushInterval: time.Minute, // Never fires during the test
	})

	for i := 0; i < 7; i++ {
		sink.Write(LogEntry{Level: "debug", Component: "test", Message: "drain me"})
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if total := writer.TotalEntries(); total != 7 {
		t.Errorf("Expected 7 entries drained on close, got %d", total)
	}

	// Writes after close are dropped, not panics.
	sink.Write(LogEntry{Message: "after close"})
	if total := writer.TotalEntries(); total != 7 {
		t.Errorf("Entry written after close: got %d entries", total)
	}
}

func TestJSONLinesWriter_AppendsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tracka.log")
	writer := &JSONLinesWriter{Path: path}

	entries := []LogEntry{
		{Level: "info", Component: "cli", Message: "first"},
		{Level: "warn", Component: "cli", Message: "second"},
	}

	if err := writer.WriteBatch(context.Background(), entries); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	// Second batch appends rather than truncates.
	if err := writer.WriteBatch(context.Background(), entries[:1]); err != nil {
		t.Fatalf("second WriteBatch failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening log file: %v", err)
	}
	defer f.Close()

	var lines []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("parsing log line: %v", err)
		}
		lines = append(lines, entry)
	}

	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d", len(lines))
	}
	if lines[0].Message != "first" || lines[2].Message != "first" {
		t.Errorf("unexpected line order: %+v", lines)
	}
}

func TestLogger_SendsToSinks(t *testing.T) {
	writer := &mockLogWriter{}
	sink := NewFileSink(FileSinkConfig{Writer: writer, BatchSize: 1})
	defer sink.Close()

	log := NewLogger(&Config{
		Level:     LevelDebug,
		Component: "test",
		Output:    io.Discard,
		Sinks:     []Sink{sink},
	})

	log.Info("hello", F("meeting", "120"), F("request_id", "req-1"))

	if err := sink.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if total := writer.TotalEntries(); total != 1 {
		t.Fatalf("expected 1 sink entry, got %d", total)
	}
	entry := writer.GetBatches()[0][0]
	if entry.Message != "hello" {
		t.Errorf("Message = %q, want hello", entry.Message)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", entry.RequestID)
	}
	if entry.Fields["meeting"] != "120" {
		t.Errorf("Fields[meeting] = %q, want 120", entry.Fields["meeting"])
	}
}
