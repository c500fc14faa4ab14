package persistence

import (
	"testing"

	"lumapost/infrastructure/configuration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgreSQLDB_NotConfigured(t *testing.T) {
	db, err := NewPostgreSQLDB(configuration.Db{})
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "postgres not configured")
}

func TestNewPostgreSQLDB_InvalidURI(t *testing.T) {
	db, err := NewPostgreSQLDB(configuration.Db{URI: "postgres://app@127.0.0.1:1/luma?sslmode=disable&connect_timeout=1"})
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "ping postgres")
}
