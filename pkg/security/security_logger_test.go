package security_test

import (
	"context"
	"errors"
	"testing"

	"portfolio-backend/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*security.SecurityLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return security.NewSecurityLogger(zap.New(core), "portfolio-backend", "test"), logs
}

func TestSecurityLoggerEvents(t *testing.T) {
	t.Run("Should log missing configuration at error level", func(t *testing.T) {
		sl, logs := newObservedLogger()
		sl.LogContactNotConfigured(context.Background(), "session-1", []string{"service_id"})

		entries := logs.FilterMessage(string(security.EventContactNotConfigured)).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		assert.Equal(t, "HIGH", fields["severity"])
		assert.Equal(t, "session", fields["subject_type"])
		assert.Equal(t, security.HashValue("session-1"), fields["subject_value"])
		assert.Equal(t, `{"missing":["service_id"]}`, fields["details"])
	})

	t.Run("Should keep the delivery cause for operators", func(t *testing.T) {
		sl, logs := newObservedLogger()
		sl.LogContactDeliveryFailed(context.Background(), "session-1", errors.New("status 400"))

		entries := logs.FilterMessage(string(security.EventContactDeliveryFailed)).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, `{"cause":"status 400"}`, entries[0].ContextMap()["details"])
	})

	t.Run("Should log discarded results at info level", func(t *testing.T) {
		sl, logs := newObservedLogger()
		sl.LogContactResultDiscarded(context.Background(), "session-1")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	})

	t.Run("Should be safe on a nil logger", func(t *testing.T) {
		var sl *security.SecurityLogger
		assert.NotPanics(t, func() {
			sl.LogContactResultDiscarded(context.Background(), "session-1")
			_ = sl.Sync()
		})
	})
}

func TestGetSeverity(t *testing.T) {
	assert.Equal(t, security.SeverityHIGH, security.GetSeverity(security.EventCSRFViolation))
	assert.Equal(t, security.SeverityWARN, security.GetSeverity(security.EventRateLimitTriggered))
	assert.Equal(t, security.SeverityMEDIUM, security.GetSeverity(security.EventType("unknown")))
	assert.True(t, security.IsHighOrAbove(security.EventUnauthorizedAccess))
	assert.False(t, security.IsHighOrAbove(security.EventContactResultDiscarded))
}

func TestHashValue(t *testing.T) {
	assert.Len(t, security.HashValue("session-1"), 16)
	assert.Equal(t, security.HashValue("a"), security.HashValue("a"))
	assert.NotEqual(t, security.HashValue("a"), security.HashValue("b"))
}
