package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tv-ad-booking/internal/config"
	"github.com/iliyamo/tv-ad-booking/internal/handler"
	"github.com/iliyamo/tv-ad-booking/internal/model"
	"github.com/iliyamo/tv-ad-booking/internal/repository"
	"github.com/iliyamo/tv-ad-booking/internal/router"
	"github.com/iliyamo/tv-ad-booking/internal/service"
	"github.com/iliyamo/tv-ad-booking/internal/testfixtures"
)

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testfixtures.OpenSQLite(t)
	cfg := config.Config{JWTSecret: "router-secret", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4, AdminNotifyUserID: 1}

	users := repository.NewUserRepo(db)
	_, err := users.EnsureUser(context.Background(), repository.NewUser{
		Email: "admin@example.com", Password: "admin-pass", Name: "Ops", Role: model.RoleAdmin,
	}, cfg.BcryptCost, time.Now())
	require.NoError(t, err)

	channels := repository.NewChannelRepo(db)
	inv := service.NewInventory(repository.NewSlotRepo(db), channels, nil, nil, nil)
	fan := service.NewFanout(repository.NewNotificationRepo(db), nil, nil, nil)
	cat := service.NewCatalog(channels, repository.NewAdRepo(db), nil, nil, nil)
	ledger := service.NewLedger(service.LedgerDeps{
		Slots: inv, Bookings: repository.NewBookingRepo(db), Notifier: fan, AdminFallback: cfg.AdminNotifyUserID,
	})

	slotH := handler.NewSlotHandler(inv, nil)
	bookingH := handler.NewBookingHandler(ledger, cat, nil)
	catH := handler.NewCatalogHandler(cat)
	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)), cfg.JWTSecret)
	router.RegisterPublic(e, slotH, catH, passthrough)
	router.RegisterNotifications(e, handler.NewNotificationHandler(fan), cfg.JWTSecret)
	router.RegisterAdvertiser(e, bookingH, catH, cfg.JWTSecret)
	router.RegisterAdmin(e, slotH, bookingH, catH, cfg.JWTSecret)
	return &api{t: t, e: e}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authBody struct {
	User struct {
		ID   uint64 `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
	Refresh struct {
		Token string `json:"token"`
	} `json:"refresh"`
}

func (a *api) register(email, name string) authBody {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": email, "password": "secret-pass", "name": name, "company": name + " Ltd",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](a.t, rec)
}

func (a *api) adminToken() string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "admin@example.com", "password": "admin-pass"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[authBody](a.t, rec).Access.Token
}

func (a *api) createSlot(admin string) model.Slot {
	a.t.Helper()
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	rec := a.do(http.MethodPost, "/v1/admin/slots", admin, map[string]any{
		"title":             "Morning Show Break",
		"channel_name":      "Channel One",
		"start_time":        start.Format(time.RFC3339),
		"end_time":          start.Add(30 * time.Minute).Format(time.RFC3339),
		"duration_seconds":  30,
		"price_cents":       150000,
		"estimated_viewers": 40000,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Slot](a.t, rec)
}

func TestBookingFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()
	ann := a.register("ann@example.com", "Ann")
	bob := a.register("bob@example.com", "Bob")
	assert.Equal(t, model.RoleAdvertiser, ann.User.Role)

	slot := a.createSlot(admin)
	assert.Equal(t, model.SlotAvailable, slot.Status)

	rec := a.do(http.MethodPost, "/v1/slots/"+slot.ID+"/bookings", ann.Access.Token, map[string]string{"ad_title": "Fresh Bread"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[model.Booking](t, rec)
	assert.Equal(t, model.BookingPending, booking.Status)
	assert.Equal(t, "Ann", booking.AdvertiserName)

	rec = a.do(http.MethodPost, "/v1/slots/"+slot.ID+"/bookings", bob.Access.Token, map[string]string{"ad_title": "Bikes"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"this slot is no longer available, please choose another"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/slots", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string][]model.Slot](t, rec)["slots"])

	rec = a.do(http.MethodGet, "/v1/notifications/unread-count", admin, nil)
	assert.JSONEq(t, `{"unread":1}`, rec.Body.String())

	decision := "/v1/admin/bookings/" + booking.ID + "/decision"
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, decision, ann.Access.Token, map[string]string{"decision": "approved"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, decision, admin, map[string]string{"decision": "maybe"}).Code)

	rec = a.do(http.MethodPost, decision, admin, map[string]string{"decision": "rejected"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.BookingRejected, decode[model.Booking](t, rec).Status)

	rec = a.do(http.MethodPost, decision, admin, map[string]string{"decision": "approved"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"this booking has already been decided"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/slots", "", nil)
	assert.Len(t, decode[map[string][]model.Slot](t, rec)["slots"], 1)

	rec = a.do(http.MethodPost, "/v1/slots/"+slot.ID+"/bookings", bob.Access.Token, map[string]string{"ad_title": "Bikes"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/notifications", ann.Access.Token, nil)
	inbox := decode[map[string][]model.Notification](t, rec)["notifications"]
	require.Len(t, inbox, 1)
	assert.Equal(t, "Booking Rejected", inbox[0].Title)

	rec = a.do(http.MethodPost, "/v1/notifications/"+inbox[0].ID+"/read", bob.Access.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodPost, "/v1/notifications/read-all", ann.Access.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, "/v1/notifications/unread-count", ann.Access.Token, nil)
	assert.JSONEq(t, `{"unread":0}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/my-bookings", ann.Access.Token, nil)
	mine := decode[map[string][]model.Booking](t, rec)["bookings"]
	require.Len(t, mine, 1)
	assert.Equal(t, model.BookingRejected, mine[0].Status)

	rec = a.do(http.MethodGet, "/v1/admin/summary", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[service.Summary](t, rec)
	assert.EqualValues(t, 1, sum.Bookings[model.BookingRejected])
	assert.EqualValues(t, 1, sum.Bookings[model.BookingPending])
	assert.EqualValues(t, 1, sum.Slots[model.SlotBooked])
}

func TestSlotAdmin(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()
	ann := a.register("ann@example.com", "Ann")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/admin/slots", "", map[string]any{}).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/admin/slots", ann.Access.Token, map[string]any{}).Code)

	rec := a.do(http.MethodPost, "/v1/admin/slots", admin, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "fields")

	slot := a.createSlot(admin)
	rec = a.do(http.MethodGet, "/v1/slots/"+slot.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/slots/unknown", "", nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/v1/admin/slots/"+slot.ID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/v1/admin/slots/"+slot.ID, admin, nil).Code)
}

func TestAuthRefreshAndLogout(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com", "Ann")

	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": "ann@example.com", "password": "secret-pass", "name": "Ann",
	}).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "wrong-pass",
	}).Code)

	rec := a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": ann.Refresh.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decode[authBody](t, rec)
	assert.NotEqual(t, ann.Refresh.Token, next.Refresh.Token)

	rec = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": ann.Refresh.Token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "rotated tokens are single use")

	rec = a.do(http.MethodGet, "/v1/me", next.Access.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ann@example.com")

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/v1/auth/logout", next.Access.Token, nil).Code)
	rec = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": next.Refresh.Token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
