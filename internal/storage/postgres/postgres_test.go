package postgres

import (
	"errors"
	"os"
	"testing"

	"github.com/MStepRom/kursova2025/internal/storage/storagetest"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
)

// Set TEST_POSTGRES_URL to a scratch database to run these tests.
func setupStorage(t *testing.T) *Storage {
	t.Helper()

	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL is not set")
	}

	s, err := New(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.db.Close() })

	driver, err := migratepg.WithInstance(s.db, &migratepg.Config{})
	require.NoError(t, err)

	m, err := migrate.NewWithDatabaseInstance("file://../../../migrations", "postgres", driver)
	require.NoError(t, err)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}

	_, err = s.db.Exec(`TRUNCATE votes, poll_options, polls, tasks, users`)
	require.NoError(t, err)

	return s
}

func TestStorage_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Store {
		return setupStorage(t)
	})
}
