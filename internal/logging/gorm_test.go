package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })
	return &buf
}

func query() (string, int64) {
	return "SELECT * FROM books WHERE id = 1", 0
}

func TestGormLogger_RecordNotFoundIsSilent(t *testing.T) {
	buf := captureLogs(t, "debug")

	NewGormLogger().Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	NewGormLogger().Trace(context.Background(), time.Now(), query, fmt.Errorf("lookup book: %w", gorm.ErrRecordNotFound))

	assert.Empty(t, buf.String())
}

func TestGormLogger_FailedQuery(t *testing.T) {
	buf := captureLogs(t, "info")

	NewGormLogger().Trace(context.Background(), time.Now(), query, errors.New("no such table: books"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "gorm", entry["component"])
	assert.Equal(t, "SELECT * FROM books WHERE id = 1", entry["sql"])
	assert.Equal(t, "no such table: books", entry["error"])
}

func TestGormLogger_SlowQuery(t *testing.T) {
	buf := captureLogs(t, "info")

	NewGormLogger().Trace(context.Background(), time.Now().Add(-time.Second), query, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Slow query", entry["message"])
}

func TestGormLogger_LogMode(t *testing.T) {
	buf := captureLogs(t, "debug")
	base := NewGormLogger()

	base.Trace(context.Background(), time.Now(), query, nil)
	assert.Empty(t, buf.String(), "fast queries are not logged at warn level")

	base.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), query, nil)
	assert.Contains(t, buf.String(), `"message":"Query"`)

	buf.Reset()
	base.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), query, errors.New("boom"))
	assert.Empty(t, buf.String())
}
