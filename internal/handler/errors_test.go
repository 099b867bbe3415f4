package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tv-ad-booking/internal/service"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &service.ValidationError{FieldErrors: map[string]string{"title": "is required"}}, http.StatusBadRequest, `"title":"is required"`},
		{"not found", service.ErrNotFound, http.StatusNotFound, `"not found"`},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, `"forbidden"`},
		{"slot taken", service.ErrSlotUnavailable, http.StatusConflict, "no longer available"},
		{"decided", service.ErrInvalidState, http.StatusConflict, "already been decided"},
		{"conflict", service.ErrConflict, http.StatusConflict, `"conflict"`},
		{"transient", fmt.Errorf("%w: deadlock", service.ErrTransient), http.StatusServiceUnavailable, "retry"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			require.NoError(t, respondError(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRequestValidator(t *testing.T) {
	e := echo.New()
	e.Validator = NewRequestValidator()

	body := `{"ad_id":"not-a-uuid","ad_title":""}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var r submitReq
	err := bind(c, &r)
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "uuid", vErr.FieldErrors["ad_id"])
	assert.Equal(t, "required", vErr.FieldErrors["ad_title"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"decision":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c = e.NewContext(req, httptest.NewRecorder())
	var d decisionReq
	require.ErrorAs(t, bind(c, &d), &vErr)
	assert.Contains(t, vErr.FieldErrors, "body")
}
