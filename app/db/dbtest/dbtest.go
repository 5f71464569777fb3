// Package dbtest opens a migrated in-memory SQLite database for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a private database that lives until the test ends. It uses a
// single connection, so code running inside a transaction must only use the
// transaction handle.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := configs.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrations.AutoMigrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
