package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string `gorm:"uniqueIndex"`
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(Options{Driver: "oracle"})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpenSQLiteTranslatesErrors(t *testing.T) {
	db, err := OpenSQLite("file:database_test?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	require.NoError(t, Migrate(db, &widget{}))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)

	err = db.Create(&widget{Name: "a"}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
