package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	db, err := New("sqlite", path, "")
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("login_events"))
	assert.True(t, db.Migrator().HasTable("leads"))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New("postgres", "", "")
	assert.Error(t, err)

	_, err = New("mysql", "", "")
	assert.Error(t, err)
}
