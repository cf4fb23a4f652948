package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func itemsQuery() (string, int64) {
	return `SELECT * FROM "inventory_items" WHERE owner_id = $1`, 3
}

func TestGormLoggerTraceQuery(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), itemsQuery, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "SQL Query", entry.Message)
	fields := entry.ContextMap()
	assert.Contains(t, fields["sql"], "inventory_items")
	assert.EqualValues(t, 3, fields["rows"])
}

func TestGormLoggerTraceError(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)

	dbErr := errors.New("connection reset")
	gl.Trace(context.Background(), time.Now(), itemsQuery, dbErr)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SQL Error", logs.All()[0].Message)
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), itemsQuery, gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())

	gl, logs = newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))
	gl.Trace(context.Background(), time.Now(), itemsQuery, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLoggerSlowQuery(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gl.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), itemsQuery, nil)

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "SLOW SQL")
}

func TestGormLoggerSilent(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), itemsQuery, errors.New("ignored"))
	gl.Info(context.Background(), "ignored")
	gl.Error(context.Background(), "ignored")

	assert.Zero(t, logs.Len())
}

func TestGormLoggerLogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Error)

	quieter := gl.LogMode(gormlogger.Silent)
	assert.NotSame(t, gl, quieter)
	assert.Equal(t, gormlogger.Error, gl.logLevel)
}

func TestMapGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"debug":  gormlogger.Info,
	}
	for input, want := range cases {
		assert.Equal(t, want, MapGormLogLevel(input), input)
	}
}
