package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const pgBatchSize = 50

// PGHandler is an slog.Handler that batches ERROR+ logs into system_logs.
type PGHandler struct {
	db     *gorm.DB
	shared *pgBuffer
	attrs  []slog.Attr
}

type pgBuffer struct {
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return newPGHandler(db, 5*time.Second)
}

func newPGHandler(db *gorm.DB, interval time.Duration) *PGHandler {
	h := &PGHandler{
		db: db,
		shared: &pgBuffer{
			buffer: make([]models.SystemLog, 0, pgBatchSize),
			ticker: time.NewTicker(interval),
			done:   make(chan struct{}),
		},
	}
	go h.flushLoop()
	return h
}

func (h *PGHandler) flushLoop() {
	for {
		select {
		case <-h.shared.ticker.C:
			h.flush()
		case <-h.shared.done:
			h.flush()
			return
		}
	}
}

func (h *PGHandler) flush() {
	b := h.shared
	b.mu.Lock()
	if len(b.buffer) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.buffer
	b.buffer = make([]models.SystemLog, 0, pgBatchSize)
	b.mu.Unlock()

	// Warn is below PGHandler's level, so this never re-enters it.
	if err := h.db.CreateInBatches(batch, pgBatchSize).Error; err != nil {
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and ends the flush loop. It is safe to call
// more than once.
func (h *PGHandler) Stop() {
	h.shared.once.Do(func() {
		h.shared.ticker.Stop()
		close(h.shared.done)
	})
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "account_id":
			if id, ok := accountID(a.Value); ok {
				entry.AccountID = &id
			}
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch a.Value.Kind() {
			case slog.KindFloat64:
				entry.LatencyMs = int(math.Round(a.Value.Float64()))
			case slog.KindInt64:
				entry.LatencyMs = int(a.Value.Int64())
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	b := h.shared
	b.mu.Lock()
	b.buffer = append(b.buffer, entry)
	needFlush := len(b.buffer) >= pgBatchSize
	b.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{db: h.db, shared: h.shared, attrs: merged}
}

// WithGroup is a no-op; system_logs has no nested columns.
func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}

func accountID(v slog.Value) (uint, bool) {
	switch v.Kind() {
	case slog.KindUint64:
		return uint(v.Uint64()), true
	case slog.KindInt64:
		if v.Int64() < 0 {
			return 0, false
		}
		return uint(v.Int64()), true
	}
	return 0, false
}
