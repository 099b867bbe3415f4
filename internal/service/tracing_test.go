package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/iliyamo/tv-ad-booking/internal/service"
)

func TestLedgerSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	env := newLedgerEnv(t)
	ctx := context.Background()
	slot := env.slot(t, adminID)
	_, err := env.ledger.SubmitBooking(ctx, submitInput(slot.ID, advertiserID))
	require.NoError(t, err)
	_, err = env.ledger.SubmitBooking(ctx, submitInput(slot.ID, otherID))
	require.ErrorIs(t, err, service.ErrSlotUnavailable)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ledger.SubmitBooking", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "slot_unavailable", spans[1].Status().Description)
}
