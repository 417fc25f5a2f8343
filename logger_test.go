package rbacmiddleware

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFields(t *testing.T) {
	testCases := []struct {
		name     string
		args     []any
		expected map[string]any
	}{
		{name: "no args", args: nil, expected: map[string]any{}},
		{name: "key value pairs", args: []any{"a", 1, "b", "two"}, expected: map[string]any{"a": 1, "b": "two"}},
		{name: "trailing key is dropped", args: []any{"a", 1, "b"}, expected: map[string]any{"a": 1}},
		{name: "non-string key is dropped", args: []any{42, "x", "a", 1}, expected: map[string]any{"a": 1}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, fields(testCase.args))
		})
	}
}

func TestZapLoggerAdapter(t *testing.T) {
	zapCore, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(zapCore))

	logger.Info("token validated", "subject", "user@example.com", "role", "USER")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "token validated", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fieldMap := entries[0].ContextMap()
	assert.Equal(t, "user@example.com", fieldMap["subject"])
	assert.Equal(t, "USER", fieldMap["role"])
}

func TestLogrusLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	logger := NewLogrusLogger(l)

	logger.Warn("credential check failed", "code", "token_expired")

	assert.Contains(t, buf.String(), `"msg":"credential check failed"`)
	assert.Contains(t, buf.String(), `"code":"token_expired"`)
}

func TestZerologLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Error("credential check failed", "code", "invalid_signature")

	assert.Contains(t, buf.String(), `"message":"credential check failed"`)
	assert.Contains(t, buf.String(), `"code":"invalid_signature"`)
}
