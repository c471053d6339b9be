package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/mertakdeniz/lunamarket-backend/internal/models"
)

// StartCleanup runs a daily goroutine that deletes system_logs rows older
// than the retention window. One sweep runs immediately on start so a
// long-stopped instance does not wait a day to catch up.
func StartCleanup(db *gorm.DB, retention time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		sweep(db, retention)
		for {
			select {
			case <-ticker.C:
				sweep(db, retention)
			case <-done:
				return
			}
		}
	}()
}

func sweep(db *gorm.DB, retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
}
