package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// empty values are ignored by viper, so this masks whatever the host exports
	for _, key := range []string{"PORT", "DB_DRIVER", "JWT_TTL", "ADMIN_USERNAME", "PRODUCTS_PAGE_SIZE", "TRANSACTIONS_PAGE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, "postgres", cfg.DBDriver)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, "admin", cfg.AdminUsername)
	require.Equal(t, 10, cfg.ProductsPageSize)
	require.Equal(t, 20, cfg.TransactionsPageSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("PRODUCTS_PAGE_SIZE", "25")

	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, 90*time.Minute, cfg.JWTTTL)
	require.Equal(t, 25, cfg.ProductsPageSize)
}
