package service

import (
	"claudecode-es/backend/db"
	"claudecode-es/backend/internal/store"
	"claudecode-es/backend/pkg/util"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var epoch = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*store.MemoryStore, *util.ManualClock) {
	t.Helper()

	clock := util.NewManualClock(epoch)
	s := store.NewMemory(clock)
	t.Cleanup(func() { _ = s.Close() })

	return s, clock
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	conn, err := db.New("sqlite", path, "")
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return conn
}
