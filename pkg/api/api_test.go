package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/db"
	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const testSecret = "test-secret"

type mockNotifier struct {
	sent []string
	err  error
}

func (m *mockNotifier) SendEmail(to, subject, body string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func newTestServer(t *testing.T, notifier *mockNotifier) http.Handler {
	t.Helper()
	cfg := &config.Config{
		HostelName: "Test Hostel",
		Store:      config.StoreConfig{Backend: config.BackendMemory},
		Server:     config.ServerConfig{JWTSecret: testSecret},
		Schedule:   config.ScheduleConfig{RetryDelay: time.Millisecond},
		Laundry:    config.LaundryConfig{Machines: 2},
		Google:     config.GoogleConfig{NotifyByEmail: true},
	}
	database := db.NewDB(docstore.NewMemory())

	server := NewServer(database, cfg, zap.NewNop(), nil)
	if notifier != nil {
		server.notifier = notifier
	}
	return server.Routes()
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := IssueToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, h http.Handler, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatus(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Test Hostel", decode(t, rec)["hostel"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAuthentication(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name string
		tok  string
		want int
	}{
		{name: "missing token", tok: "", want: http.StatusUnauthorized},
		{name: "garbage token", tok: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "valid token", tok: token(t, "u1", ""), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/v1/shifts", tt.tok, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthentication_WrongSecret(t *testing.T) {
	h := newTestServer(t, nil)

	tok, err := IssueToken("other-secret", "u1", "", time.Hour)
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/v1/shifts", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthentication_Expired(t *testing.T) {
	h := newTestServer(t, nil)

	tok, err := IssueToken(testSecret, "u1", "", -time.Minute)
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/v1/shifts", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShiftLifecycle(t *testing.T) {
	h := newTestServer(t, nil)
	tok := token(t, "u1", "")

	rec := do(t, h, http.MethodPost, "/api/v1/shifts/end", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no active shift")

	rec = do(t, h, http.MethodPost, "/api/v1/shifts/start", tok, map[string]string{"shiftTime": "08:00-10:00"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/shifts/active", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	shift := decode(t, rec)["shift"].(map[string]any)
	assert.Equal(t, "u1", shift["userId"])

	rec = do(t, h, http.MethodPost, "/api/v1/shifts/end", tok, map[string]string{"notes": "quiet"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/summaries/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["totalLogs"])
}

func TestStartShift_BadInput(t *testing.T) {
	h := newTestServer(t, nil)
	tok := token(t, "u1", "")

	tests := []struct {
		name string
		body any
	}{
		{name: "unknown shift time", body: map[string]string{"shiftTime": "02:00-04:00"}},
		{name: "unknown field", body: map[string]string{"shift": "08:00-10:00"}},
		{name: "malformed", body: `{"shiftTime":`},
		{name: "empty", body: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/shifts/start", tok, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestShiftHistory_OtherUser(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/shifts?userId=u2", token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/shifts?userId=u2", token(t, "boss", RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/summaries", token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/summaries", token(t, "boss", RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/summaries/recompute", token(t, "boss", RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["recomputed"])
}

func TestSchedule(t *testing.T) {
	h := newTestServer(t, nil)
	tok := token(t, "v1", "")

	rec := do(t, h, http.MethodPut, "/api/v1/schedule/2024-03-04/morning/v1", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/schedule/2024-03-04/morning/v2", tok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "volunteers only assign themselves")

	rec = do(t, h, http.MethodPut, "/api/v1/schedule/2024-03-04/brunch/v1", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/schedule?from=2024-03-01&to=2024-03-31", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	schedule := decode(t, rec)["schedule"].(map[string]any)
	assert.Contains(t, schedule, "2024-03-04")

	rec = do(t, h, http.MethodDelete, "/api/v1/schedule/2024-03-04/morning/v1?verify=true", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["removed"])
	assert.Empty(t, body["schedule"])

	rec = do(t, h, http.MethodDelete, "/api/v1/schedule/2024-03-04/morning", tok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTasks(t *testing.T) {
	h := newTestServer(t, nil)
	tok := token(t, "u1", "")

	rec := do(t, h, http.MethodPost, "/api/v1/tasks", tok, map[string]string{"title": "Fix the tap"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["task"].(map[string]any)["id"].(string)

	rec = do(t, h, http.MethodPatch, "/api/v1/tasks/"+id+"/status", tok, map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", decode(t, rec)["task"].(map[string]any)["status"])

	rec = do(t, h, http.MethodPatch, "/api/v1/tasks/"+id+"/status", tok, map[string]string{"status": "someday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/v1/tasks/missing/assignee", tok, map[string]string{"assigneeId": "u2"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/tasks/"+id, token(t, "boss", RoleAdmin), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEvents(t *testing.T) {
	h := newTestServer(t, nil)
	admin := token(t, "boss", RoleAdmin)

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	body := map[string]any{
		"title":      "Quiz night",
		"startTime":  start,
		"endTime":    start.Add(2 * time.Hour),
		"recurrence": "FREQ=WEEKLY;COUNT=3",
	}

	rec := do(t, h, http.MethodPost, "/api/v1/events", token(t, "u1", ""), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/events", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	event := decode(t, rec)["event"].(map[string]any)
	assert.Equal(t, "upcoming", event["status"])
	id := event["id"].(string)

	rec = do(t, h, http.MethodGet, "/api/v1/events/"+id+"/occurrences?to="+start.AddDate(0, 0, 30).Format(time.RFC3339), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["occurrences"], 3)

	rec = do(t, h, http.MethodGet, "/api/v1/events/"+id+"/occurrences?from=yesterday", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/events?status=upcoming", token(t, "u1", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["events"], 1)
}

func TestMessages(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("smtp down")}
	h := newTestServer(t, notifier)

	rec := do(t, h, http.MethodPost, "/api/v1/messages", token(t, "u1", ""), map[string]string{
		"recipientId":    "u2",
		"recipientEmail": "u2@example.com",
		"body":           "Can you swap Friday?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "notification failure does not fail the send")
	assert.Equal(t, []string{"u2@example.com"}, notifier.sent)
	id := decode(t, rec)["message"].(map[string]any)["id"].(string)

	rec = do(t, h, http.MethodPost, "/api/v1/messages", token(t, "u1", ""), map[string]string{"body": "Hello all"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "only admins broadcast")

	rec = do(t, h, http.MethodPost, "/api/v1/messages/"+id+"/read", token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/messages/"+id+"/read", token(t, "u2", ""), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/messages", token(t, "u2", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decode(t, rec)["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, true, messages[0].(map[string]any)["read"])
}

func TestLaundry(t *testing.T) {
	h := newTestServer(t, nil)

	booking := map[string]any{"date": "2024-05-01", "slot": "13:00-16:00", "machine": 1}

	rec := do(t, h, http.MethodPost, "/api/v1/laundry", token(t, "u1", ""), booking)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["booking"].(map[string]any)["id"].(string)

	rec = do(t, h, http.MethodPost, "/api/v1/laundry", token(t, "u2", ""), booking)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/laundry?date=2024-05-01", token(t, "u2", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["bookings"], 1)

	rec = do(t, h, http.MethodDelete, "/api/v1/laundry/"+id, token(t, "u2", ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/laundry/"+id, token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouting(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	s := NewServer(db.NewDB(docstore.NewMemory()), &config.Config{}, zap.NewNop(), nil)
	h := s.traceID(s.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, genericErrorMessage, decode(t, rec)["error"])
}
