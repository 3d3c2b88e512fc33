// Package choicelog asynchronously records the user's tool choices to
// Postgres — the one persistence the spec's Non-goals still permit — without
// ever blocking the tool handler that produced the entry. Adapted from the
// teacher's audit.Writer batching/flush design.
package choicelog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one recorded tool invocation.
type Entry struct {
	Tenant    string
	SessionID string
	ToolName  string
	Args      json.RawMessage
	Outcome   string // "ok" or the Result error code
	At        time.Time
}

const (
	bufferSize    = 256
	flushInterval = 2 * time.Second
	flushBatch    = 32
)

// Writer is an async, buffered writer. Entries are sent to an internal
// channel and flushed by a background goroutine; Log never blocks the
// caller.
type Writer struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	entries chan Entry
	wg      sync.WaitGroup

	onRecorded func()
	onDropped  func()
}

// NewWriter creates a Writer. Call Start to begin processing entries.
func NewWriter(pool *pgxpool.Pool, logger *slog.Logger) *Writer {
	return &Writer{
		pool:    pool,
		logger:  logger,
		entries: make(chan Entry, bufferSize),
	}
}

// OnMetrics wires optional counters for recorded/dropped entries, so callers
// (the supervisor) don't have to make choicelog depend on a specific metrics
// package.
func (w *Writer) OnMetrics(onRecorded, onDropped func()) {
	w.onRecorded = onRecorded
	w.onDropped = onDropped
}

// Start begins the background goroutine that flushes entries to the
// database. It returns when ctx is cancelled and all pending entries have
// been flushed.
func (w *Writer) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Close waits for all pending entries to be flushed.
func (w *Writer) Close() {
	close(w.entries)
	w.wg.Wait()
}

// Log enqueues an entry for async writing. It never blocks the caller; if
// the buffer is full the entry is dropped and a warning is logged.
func (w *Writer) Log(entry Entry) {
	select {
	case w.entries <- entry:
	default:
		w.logger.Warn("choicelog buffer full, dropping entry",
			"tenant", entry.Tenant, "tool", entry.ToolName)
		if w.onDropped != nil {
			w.onDropped()
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Entry, 0, flushBatch)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-w.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= flushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			for {
				select {
				case entry, ok := <-w.entries:
					if !ok {
						flush()
						return
					}
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (w *Writer) flush(entries []Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, e := range entries {
		_, err := w.pool.Exec(ctx, `
			INSERT INTO tool_choice_log (tenant, session_id, tool_name, args, outcome, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.Tenant, e.SessionID, e.ToolName, e.Args, e.Outcome, e.At)
		if err != nil {
			w.logger.Error("writing tool choice entry", "error", err,
				"tenant", e.Tenant, "tool", e.ToolName)
			continue
		}
		if w.onRecorded != nil {
			w.onRecorded()
		}
	}
}
