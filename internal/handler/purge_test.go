package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/tv-ad-booking/internal/logging"
)

type purgerFunc func(ctx context.Context) error

func (f purgerFunc) Purge(ctx context.Context) error { return f(ctx) }

func TestBookingPurgeLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(logging.ContextWithLogger(req.Context(), logger))
	c := echo.New().NewContext(req, httptest.NewRecorder())

	calls := 0
	h := &BookingHandler{Cache: purgerFunc(func(context.Context) error {
		calls++
		return errors.New("redis: connection refused")
	})}
	h.purge(c)

	assert.Equal(t, 1, calls)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `msg="slot cache purge failed"`)
	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), "error_kind=internal")
}

func TestPurgeSlotCache_SilentOnSuccessAndNil(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(logging.ContextWithLogger(req.Context(), logger))
	c := echo.New().NewContext(req, httptest.NewRecorder())

	purgeSlotCache(c, nil)
	purgeSlotCache(c, purgerFunc(func(context.Context) error { return nil }))
	assert.Empty(t, buf.String())
}
