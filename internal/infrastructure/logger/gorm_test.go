package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func contextField(entry observer.LoggedEntry, key string) (zapcore.Field, bool) {
	for _, f := range entry.Context {
		if f.Key == key {
			return f, true
		}
	}
	return zapcore.Field{}, false
}

func TestNewGormLogger_Options(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
		WithFullSQL(true),
	)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
	assert.True(t, gl.fullSQL)

	defaults, _ := newObservedGormLogger(gormlogger.Warn)
	assert.Equal(t, 200*time.Millisecond, defaults.slowThreshold)
	assert.True(t, defaults.ignoreRecordNotFoundError)
	assert.False(t, defaults.fullSQL)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)
	changed, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	redacted, _ := newObservedGormLogger(gormlogger.Info)
	sql, params := redacted.ParamsFilter(context.Background(), "SELECT * FROM clients WHERE nid = ?", "1234567890")
	assert.Equal(t, "SELECT * FROM clients WHERE nid = ?", sql)
	assert.Nil(t, params)

	full, _ := newObservedGormLogger(gormlogger.Info, WithFullSQL(true))
	_, params = full.ParamsFilter(context.Background(), "SELECT 1 WHERE x = ?", 42)
	assert.Equal(t, []any{42}, params)
}

func TestGormLogger_MessageLevels(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Warn)
	ctx := context.Background()

	gl.Info(ctx, "info %s", "suppressed")
	gl.Warn(ctx, "warn %d", 1)
	gl.Error(ctx, "error %d", 2)

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "warn 1", logs[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
}

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return `SELECT * FROM "sales" WHERE id = $1`, 1 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		begin   time.Time
		err     error
		wantMsg string
	}{
		{"error", gormlogger.Error, nil, time.Now(), errors.New("deadlock detected"), "SQL Error"},
		{"not found ignored", gormlogger.Error, nil, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"not found logged", gormlogger.Error, []GormLoggerOption{WithIgnoreRecordNotFoundError(false)}, time.Now(), gormlogger.ErrRecordNotFound, "SQL Error"},
		{"slow", gormlogger.Warn, []GormLoggerOption{WithSlowThreshold(time.Millisecond)}, time.Now().Add(-time.Second), nil, "Slow SQL"},
		{"slow disabled", gormlogger.Warn, []GormLoggerOption{WithSlowThreshold(0)}, time.Now().Add(-time.Second), nil, ""},
		{"normal", gormlogger.Info, nil, time.Now(), nil, "SQL Query"},
		{"silent", gormlogger.Silent, nil, time.Now(), errors.New("ignored"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, recorded := newObservedGormLogger(tt.level, tt.opts...)
			gl.Trace(context.Background(), tt.begin, query, tt.err)

			if tt.wantMsg == "" {
				assert.Empty(t, recorded.All())
				return
			}
			logs := recorded.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.wantMsg, logs[0].Message)
			sql, ok := contextField(logs[0], "sql")
			require.True(t, ok)
			assert.Contains(t, sql.String, `"sales"`)
			op, ok := contextField(logs[0], "op")
			require.True(t, ok)
			assert.Equal(t, "SELECT", op.String)
		})
	}
}

func TestGormLogger_Trace_CarriesContextFields(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithActor(ctx, "user-1", "HOF")
	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	reqID, ok := contextField(logs[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", reqID.String)
	userID, ok := contextField(logs[0], "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-1", userID.String)
}

func TestStatementVerb(t *testing.T) {
	assert.Equal(t, "UPDATE", statementVerb(`  update "plots" SET status = $1`))
	assert.Equal(t, "BEGIN", statementVerb("BEGIN"))
	assert.Equal(t, "", statementVerb(""))
}

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"unknown": gormlogger.Warn,
		"":        gormlogger.Warn,
	}
	for input, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(input), input)
	}
}

func TestGormLoggerImplementsInterfaces(t *testing.T) {
	var _ gormlogger.Interface = (*GormLogger)(nil)
	var _ gorm.ParamsFilter = (*GormLogger)(nil)
}
