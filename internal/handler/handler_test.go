package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personalcal/internal/auth"
	"personalcal/internal/calendar"
	"personalcal/internal/model"
	"personalcal/internal/repository"
	"personalcal/internal/service"
)

const testPassword = "secret123"

func newTestRouter() http.Handler {
	svc := service.NewEventService(repository.NewMemory())
	gate := auth.NewGate(testPassword)
	view := calendar.New(time.Sunday, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(svc, gate, view, logger, "").Routes()
}

func do(router http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: testPassword})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createEvent(t *testing.T, router http.Handler, body string) model.Event {
	t.Helper()
	w := do(router, http.MethodPost, "/api/events", body, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var e model.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	return e
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(), http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router := newTestRouter()

	w := do(router, http.MethodPost, "/api/auth", `{"password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies(), "no cookie on failed login")
}

func TestLoginMissingPassword(t *testing.T) {
	w := do(newTestRouter(), http.MethodPost, "/api/auth", `{}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSetsCookieUsableForEvents(t *testing.T) {
	router := newTestRouter()

	w := do(router, http.MethodPost, "/api/auth", `{"password":"secret123"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	// Subsequent request carries only the cookie, no password.
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestEventsRequireAuth(t *testing.T) {
	router := newTestRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/events"},
		{http.MethodPost, "/api/events"},
		{http.MethodGet, "/api/events/some-id"},
		{http.MethodPut, "/api/events/some-id"},
		{http.MethodDelete, "/api/events/some-id"},
		{http.MethodGet, "/api/calendar"},
		{http.MethodGet, "/api/events/export.ics"},
	} {
		w := do(router, tc.method, tc.path, "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCreateEvent(t *testing.T) {
	router := newTestRouter()

	e := createEvent(t, router,
		`{"title":"Lunch","startTime":"2024-06-01T12:00:00Z","endTime":"2024-06-01T13:00:00Z"}`)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Lunch", e.Title)
	assert.True(t, e.StartTime.Equal(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, e.EndTime.Equal(time.Date(2024, time.June, 1, 13, 0, 0, 0, time.UTC)))
	assert.NotNil(t, e.Attendees)
}

func TestCreateEventMissingFields(t *testing.T) {
	router := newTestRouter()

	for name, body := range map[string]string{
		"no title":     `{"startTime":"2024-06-01T12:00:00Z","endTime":"2024-06-01T13:00:00Z"}`,
		"no startTime": `{"title":"Lunch","endTime":"2024-06-01T13:00:00Z"}`,
		"no endTime":   `{"title":"Lunch","startTime":"2024-06-01T12:00:00Z"}`,
		"bad time":     `{"title":"Lunch","startTime":"tomorrow","endTime":"2024-06-01T13:00:00Z"}`,
	} {
		w := do(router, http.MethodPost, "/api/events", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestGetUnknownEvent(t *testing.T) {
	w := do(newTestRouter(), http.MethodGet, "/api/events/no-such-id", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventWireRoundTrip(t *testing.T) {
	router := newTestRouter()

	created := createEvent(t, router,
		`{"title":"Picnic","description":"bring food","location":"Park",`+
			`"startTime":"2024-06-08T11:00:00Z","endTime":"2024-06-08T14:00:00Z",`+
			`"attendees":["Ana","Bo"]}`)

	w := do(router, http.MethodGet, "/api/events/"+created.ID, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, created.Location, got.Location)
	assert.True(t, created.StartTime.Equal(got.StartTime))
	assert.True(t, created.EndTime.Equal(got.EndTime))
	assert.Equal(t, created.Attendees, got.Attendees)
}

func TestUpdateEventPartial(t *testing.T) {
	router := newTestRouter()

	created := createEvent(t, router,
		`{"title":"Standup","startTime":"2024-06-03T09:00:00Z","endTime":"2024-06-03T09:15:00Z"}`)

	w := do(router, http.MethodPut, "/api/events/"+created.ID, `{"location":"Room 2"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, "Room 2", updated.Location)
	assert.Equal(t, "Standup", updated.Title)
	assert.True(t, created.StartTime.Equal(updated.StartTime))
}

func TestUpdateUnknownEvent(t *testing.T) {
	w := do(newTestRouter(), http.MethodPut, "/api/events/no-such-id", `{"title":"x"}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEventTwice(t *testing.T) {
	router := newTestRouter()

	created := createEvent(t, router,
		`{"title":"Gym","startTime":"2024-06-04T18:00:00Z","endTime":"2024-06-04T19:00:00Z"}`)

	w := do(router, http.MethodDelete, "/api/events/"+created.ID, "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodDelete, "/api/events/"+created.ID, "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEventsSorted(t *testing.T) {
	router := newTestRouter()

	createEvent(t, router, `{"title":"b","startTime":"2024-06-20T09:00:00Z","endTime":"2024-06-20T10:00:00Z"}`)
	createEvent(t, router, `{"title":"a","startTime":"2024-06-05T09:00:00Z","endTime":"2024-06-05T10:00:00Z"}`)

	w := do(router, http.MethodGet, "/api/events", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var events []model.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Title)
	assert.Equal(t, "b", events[1].Title)
}

func TestCalendarEndpointBucketsEvents(t *testing.T) {
	router := newTestRouter()

	createEvent(t, router,
		`{"title":"Offsite","startTime":"2024-06-03T09:00:00Z","endTime":"2024-06-05T17:00:00Z"}`)

	w := do(router, http.MethodGet, "/api/calendar?mode=month&date=2024-06-15", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var page calendar.Page
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))

	assert.Equal(t, calendar.ModeMonth, page.Mode)
	assert.Equal(t, "2024-05-26", page.Start)
	assert.Equal(t, "2024-07-06", page.End)
	for _, d := range page.Days {
		switch d.Date {
		case "2024-06-03":
			assert.Len(t, d.Events, 1)
		case "2024-06-04", "2024-06-05":
			assert.Empty(t, d.Events)
		}
	}
}

func TestCalendarEndpointBadDate(t *testing.T) {
	w := do(newTestRouter(), http.MethodGet, "/api/calendar?date=June", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportICS(t *testing.T) {
	router := newTestRouter()

	createEvent(t, router,
		`{"title":"Lunch","startTime":"2024-06-01T12:00:00Z","endTime":"2024-06-01T13:00:00Z"}`)

	w := do(router, http.MethodGet, "/api/events/export.ics", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
	assert.Contains(t, w.Body.String(), "SUMMARY:Lunch")
}

func TestSessionEndpoint(t *testing.T) {
	router := newTestRouter()

	w := do(router, http.MethodGet, "/api/session", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = do(router, http.MethodGet, "/api/session", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newTestRouter()

	w := do(router, http.MethodDelete, "/api/auth", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}
