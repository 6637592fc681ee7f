package bolt

import (
	"os"
	"path/filepath"
	"time"

	bboltlib "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/dayplan/backend/internal/config"
)

// Open opens (or creates) the embedded task database file.
func Open(cfg config.BoltConfig, logger *zap.Logger) (*bboltlib.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := bboltlib.Open(cfg.Path, 0o600, &bboltlib.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	logger.Info("opened embedded task store", zap.String("path", cfg.Path))
	return db, nil
}

// Close closes the database and logs the result.
func Close(db *bboltlib.DB, logger *zap.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil && logger != nil {
		logger.Warn("task store close failed", zap.Error(err))
		return
	}
	if logger != nil {
		logger.Info("embedded task store closed")
	}
}
