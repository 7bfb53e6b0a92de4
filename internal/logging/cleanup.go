package logging

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartCleanup schedules Cleanup on the cron schedule (e.g. "@daily"). Stop the
// returned scheduler on shutdown.
func StartCleanup(db *gorm.DB, schedule string, retention time.Duration) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { Cleanup(db, retention, time.Now()) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

// Cleanup deletes system logs older than retention and sessions that are
// revoked or expired as of now.
func Cleanup(db *gorm.DB, retention time.Duration, now time.Time) {
	logs := db.Where("timestamp < ?", now.Add(-retention)).Delete(&models.SystemLog{})
	if logs.Error != nil {
		slog.Error("log cleanup failed", "action", "cleanup", "error", logs.Error)
	} else if logs.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", logs.RowsAffected)
	}

	sessions := db.Where("revoked = ? OR expires_at < ?", true, now).Delete(&models.Session{})
	if sessions.Error != nil {
		slog.Error("session cleanup failed", "action", "cleanup", "error", sessions.Error)
	} else if sessions.RowsAffected > 0 {
		slog.Info("session cleanup completed", "deleted", sessions.RowsAffected)
	}
}
