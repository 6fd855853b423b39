package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "app@tcp(db:3306)/booking?charset=utf8mb4&parseTime=true&loc=UTC", DSN("app", "", "db", "3306", "booking"))

	cfg, err := mysql.ParseDSN(DSN("app", "s3cret", "db", "3307", "booking"))
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "s3cret", cfg.Passwd)
	assert.Equal(t, "db:3307", cfg.Addr)
	assert.Equal(t, "booking", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}
