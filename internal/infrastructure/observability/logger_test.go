package observability

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	otellog "go.opentelemetry.io/otel/log"
)

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, otellog.SeverityInfo, severityFor(zerolog.InfoLevel))
	assert.Equal(t, otellog.SeverityWarn, severityFor(zerolog.WarnLevel))
	assert.Equal(t, otellog.SeverityError, severityFor(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityUndefined, severityFor(zerolog.NoLevel))
}

func TestOTelHook_DoesNotPanicWithNoopProvider(t *testing.T) {
	logger := zerolog.New(io.Discard).Hook(NewOTelHook("test"))
	assert.NotPanics(t, func() {
		logger.Info().Ctx(context.Background()).Msg("hello")
	})
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordAcquisition(ctx, nil, "done", 3, 1)
		RecordRanking(ctx, nil, "festival", 2)
		RecordCacheHit(ctx, nil, "records")
	})
}
