// Package testutil provides an embedded, migrated database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewDB returns a private in-memory SQLite database with every model migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewUser stores a user with a throwaway password.
func NewUser(t testing.TB, db *gorm.DB, username string, admin bool) *model.User {
	t.Helper()

	u := &model.User{Username: username, Email: username + "@example.com", IsAdmin: admin}
	require.NoError(t, u.SetPassword("password"))
	require.NoError(t, db.Create(u).Error)
	return u
}
