// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package audit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/metrics"
	"github.com/landspace/landspace/internal/ratelimit"
)

// WriterConfig holds audit writer settings.
type WriterConfig struct {
	// BufferSize is the async write buffer capacity. Default: 1000
	BufferSize int

	// WriteTimeout bounds each persistence call. Default: 5s
	WriteTimeout time.Duration
}

// DefaultWriterConfig returns production writer defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Writer records audit entries asynchronously. Record never blocks and
// never returns an error: a full buffer drops the entry with a warning,
// and persistence failures are logged, not propagated. Auditing must not
// take a login path down with it.
type Writer struct {
	store        Store
	entryChan    chan *Entry
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	writeTimeout time.Duration
}

// NewWriter creates a writer over the given store and starts its
// background goroutine. Call Close to drain and stop.
func NewWriter(store Store, cfg WriterConfig) *Writer {
	def := DefaultWriterConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	w := &Writer{
		store:        store,
		entryChan:    make(chan *Entry, cfg.BufferSize),
		stopChan:     make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
	}

	w.wg.Add(1)
	go w.run()

	return w
}

// Record enqueues an entry for asynchronous persistence, stamping the ID
// and timestamp. Fire-and-forget: the caller's request path is never
// blocked or failed by auditing.
func (w *Writer) Record(entry Entry) {
	if !entry.Action.Valid() {
		logging.Error().Str("action", string(entry.Action)).Msg("dropping audit entry with unknown action")
		return
	}

	entry.ID = uuid.New().String()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	select {
	case w.entryChan <- &entry:
	default:
		metrics.AuditBufferDrops.Inc()
		logging.Warn().Str("action", string(entry.Action)).Msg("audit buffer full, dropping entry")
	}
}

// RecordRequest builds an entry from the HTTP request context and records
// it. Metadata may be nil.
func (w *Writer) RecordRequest(r *http.Request, action Action, success bool, errorMessage string, metadata map[string]interface{}) {
	w.Record(Entry{
		RequestID:    logging.RequestIDFromContext(r.Context()),
		Action:       action,
		IPAddress:    ratelimit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      success,
		ErrorMessage: errorMessage,
		Metadata:     metadata,
	})
}

// Close stops the writer, draining buffered entries first.
func (w *Writer) Close() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
}

// run is the async writer loop.
func (w *Writer) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			// Drain remaining entries before exiting.
			for {
				select {
				case entry := <-w.entryChan:
					w.write(entry)
				default:
					return
				}
			}
		case entry := <-w.entryChan:
			w.write(entry)
		}
	}
}

// write persists one entry with a bounded timeout.
func (w *Writer) write(entry *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), w.writeTimeout)
	defer cancel()

	if err := w.store.Append(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		logging.Error().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit entry")
	}
}
