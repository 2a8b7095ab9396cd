package database

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/storefront/internal/config"
)

func TestNew_WithoutBackends(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	db, err := New(&config.Config{}, logger)

	require.NoError(t, err)
	assert.Nil(t, db.PG)
	assert.Nil(t, db.Neo4j)
	assert.Nil(t, db.Sessions)
	assert.NoError(t, db.Close())
}

func TestNew_InvalidPostgresURL(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	_, err := New(&config.Config{Database: config.DatabaseConfig{URL: "postgres://%zz"}}, logger)

	assert.Error(t, err)
}

func TestUsesSink(t *testing.T) {
	assert.True(t, usesSink([]string{"log", " Graph "}, "graph"))
	assert.False(t, usesSink([]string{"log", "kafka"}, "graph"))
	assert.False(t, usesSink(nil, "graph"))
}
