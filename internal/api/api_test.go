package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elecmate/commsdesk/internal/auth"
	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/elecmate/commsdesk/internal/middleware"
	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/realtime"
	"github.com/elecmate/commsdesk/internal/repository/memory"
	"github.com/elecmate/commsdesk/internal/seed"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *mailbox.Store
}

func newTestServer(t *testing.T, limiter *middleware.LimiterStore) *testServer {
	t.Helper()
	logger := zap.NewNop()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	messages, err := memory.NewMessageStore(seed.Messages(time.Now().UTC())...)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	employees := memory.NewEmployeeStore(seed.Employees(hash)...)
	jobs := memory.NewJobStore(seed.Jobs()...)

	hub := realtime.NewHub(mailbox.NewLogNotifier(logger), logger)
	store := mailbox.NewStore(messages, memory.NewOverlayStore(), logger)
	composer := mailbox.NewComposer(mailbox.ComposerDeps{
		Store:       store,
		Employees:   employees,
		Jobs:        jobs,
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Notifier:    hub,
		Logger:      logger,
	}, time.UTC)

	router := NewRouter(RouterDeps{
		Store:     store,
		Composer:  composer,
		Refresher: mailbox.NewRefresher(time.Millisecond, hub),
		Hub:       hub,
		Employees: employees,
		Jobs:      jobs,
		Limiter:   limiter,
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
		Location:  time.UTC,
		Logger:    logger,
	})
	return &testServer{router: router, store: store}
}

func token(t *testing.T, viewerID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(viewerID, "Viewer "+viewerID, viewerID+"@example.com", "Operative", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type viewBody struct {
	Tab    string           `json:"tab"`
	Pinned []models.Message `json:"pinned"`
	Groups []struct {
		Label    string           `json:"label"`
		Messages []models.Message `json:"messages"`
	} `json:"groups"`
	Flags        map[string]mailbox.RowFlags `json:"flags"`
	UnreadCounts map[string]int              `json:"unread_counts"`
	Total        int                         `json:"total"`
}

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t, nil)

	if rec := s.do(t, http.MethodGet, "/v1/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/v1/messages", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("messages without token: %d", rec.Code)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{name: "valid", email: "lisa.parker@example.com", password: "password123", want: http.StatusOK},
		{name: "wrong password", email: "lisa.parker@example.com", password: "nope", want: http.StatusUnauthorized},
		{name: "unknown email", email: "nobody@example.com", password: "password123", want: http.StatusUnauthorized},
		{name: "bad email", email: "not-an-email", password: "password123", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": tt.email, "password": tt.password})
			if rec.Code != tt.want {
				t.Fatalf("got %d want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var resp authResponse
			decode(t, rec, &resp)
			if resp.ViewerID != "6" {
				t.Fatalf("expected viewer 6, got %q", resp.ViewerID)
			}

			me := s.do(t, http.MethodGet, "/v1/users/me", resp.Token, nil)
			var emp models.Employee
			decode(t, me, &emp)
			if me.Code != http.StatusOK || emp.Name != "Lisa Parker" {
				t.Fatalf("me: %d %+v", me.Code, emp)
			}
		})
	}
}

func TestDirectory(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "1")

	var employees []models.Employee
	rec := s.do(t, http.MethodGet, "/v1/employees", tok, nil)
	decode(t, rec, &employees)
	if len(employees) != 6 {
		t.Fatalf("expected 6 employees, got %d", len(employees))
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Fatal("password hash must not be serialised")
	}

	var jobs []models.Job
	decode(t, s.do(t, http.MethodGet, "/v1/jobs", tok, nil), &jobs)
	if len(jobs) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(jobs))
	}
}

func TestListMessages(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "1")

	var v viewBody
	rec := s.do(t, http.MethodGet, "/v1/messages", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &v)
	if v.Tab != "inbox" || v.Total != 5 || v.UnreadCounts["inbox"] != 5 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if len(v.Groups) == 0 || v.Groups[0].Label != "Today" {
		t.Fatalf("expected Today first, got %+v", v.Groups)
	}

	decode(t, s.do(t, http.MethodGet, "/v1/messages?tab=safety&q=WIND", tok, nil), &v)
	if v.Total != 1 || v.Groups[0].Messages[0].ID != "COMM-002" {
		t.Fatalf("unexpected safety search: %+v", v)
	}

	tests := []struct {
		path string
		code string
	}{
		{path: "/v1/messages?tab=archive", code: mailbox.CodeInvalidTab},
		{path: "/v1/messages?unread=maybe", code: "invalid_query"},
	}
	for _, tt := range tests {
		rec := s.do(t, http.MethodGet, tt.path, tok, nil)
		var e errorBody
		decode(t, rec, &e)
		if rec.Code != http.StatusBadRequest || e.Code != tt.code {
			t.Fatalf("%s: got %d %+v", tt.path, rec.Code, e)
		}
	}
}

func TestMessageActions(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "2")

	rec := s.do(t, http.MethodPost, "/v1/messages/COMM-003/pin", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pin: %d", rec.Code)
	}
	var pin struct {
		Pinned bool `json:"pinned"`
	}
	decode(t, rec, &pin)
	if !pin.Pinned {
		t.Fatal("expected pinned=true")
	}

	var v viewBody
	decode(t, s.do(t, http.MethodGet, "/v1/messages", tok, nil), &v)
	if len(v.Pinned) != 1 || v.Pinned[0].ID != "COMM-003" || !v.Flags["COMM-003"].Pinned {
		t.Fatalf("expected COMM-003 pinned, got %+v", v.Pinned)
	}

	rec = s.do(t, http.MethodPost, "/v1/messages/COMM-002/signoff", tok, nil)
	var e errorBody
	decode(t, rec, &e)
	if rec.Code != http.StatusBadRequest || e.Code != mailbox.CodeNotSignable {
		t.Fatalf("sign off safety warning: %d %+v", rec.Code, e)
	}
	if rec := s.do(t, http.MethodPost, "/v1/messages/COMM-004/signoff", tok, nil); rec.Code != http.StatusOK {
		t.Fatalf("sign off: %d %s", rec.Code, rec.Body.String())
	}

	var detail struct {
		Message models.Message   `json:"message"`
		Flags   mailbox.RowFlags `json:"flags"`
	}
	decode(t, s.do(t, http.MethodGet, "/v1/messages/COMM-004", tok, nil), &detail)
	if !detail.Flags.SignedOff || !detail.Flags.Read {
		t.Fatalf("expected signed off and read, got %+v", detail.Flags)
	}
	if !containsID(detail.Message.SignedOffBy, "2") {
		t.Fatalf("expected sign-off receipt, got %v", detail.Message.SignedOffBy)
	}

	if rec := s.do(t, http.MethodPost, "/v1/messages/COMM-001/read", tok, nil); rec.Code != http.StatusOK {
		t.Fatalf("read: %d", rec.Code)
	}

	for i := 0; i < 2; i++ {
		if rec := s.do(t, http.MethodDelete, "/v1/messages/COMM-005", tok, nil); rec.Code != http.StatusNoContent {
			t.Fatalf("delete %d: %d", i, rec.Code)
		}
	}
	rec = s.do(t, http.MethodGet, "/v1/messages/COMM-005", tok, nil)
	decode(t, rec, &e)
	if rec.Code != http.StatusNotFound || e.Code != mailbox.CodeMessageNotFound {
		t.Fatalf("get deleted: %d %+v", rec.Code, e)
	}
	if rec := s.do(t, http.MethodDelete, "/v1/messages/NOPE", tok, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown: %d", rec.Code)
	}
}

func TestSendMessage(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "6")

	rec := s.do(t, http.MethodPost, "/v1/messages", tok, gin.H{"title": "", "message": "hello", "recipient_mode": "all"})
	var e errorBody
	decode(t, rec, &e)
	if rec.Code != http.StatusBadRequest || e.Code != mailbox.CodeMissingInfo {
		t.Fatalf("missing info: %d %+v", rec.Code, e)
	}

	body := gin.H{
		"title":          "Toolbox talk",
		"message":        "Monday 7:30 at the yard.",
		"type":           "Team Broadcast",
		"recipient_mode": "individual",
		"recipients":     []string{"1", "2"},
	}
	first := s.do(t, http.MethodPost, "/v1/messages", tok, body, IdempotencyHeader, "abc")
	second := s.do(t, http.MethodPost, "/v1/messages", tok, body, IdempotencyHeader, "abc")
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("send: %d %d %s", first.Code, second.Code, first.Body.String())
	}
	var m1, m2 models.Message
	decode(t, first, &m1)
	decode(t, second, &m2)
	if m1.ID != m2.ID {
		t.Fatalf("retry created a second message: %s vs %s", m1.ID, m2.ID)
	}

	var v viewBody
	decode(t, s.do(t, http.MethodGet, "/v1/messages?tab=briefs", token(t, "1"), nil), &v)
	if v.Total != 2 {
		t.Fatalf("expected seeded brief plus the new one, got %d", v.Total)
	}
}

func TestSendIsRateLimited(t *testing.T) {
	limiter := middleware.NewLimiterStore(1, 1, 0)
	defer limiter.Stop()
	s := newTestServer(t, limiter)
	tok := token(t, "6")

	body := gin.H{"title": "t", "message": "b"}
	if rec := s.do(t, http.MethodPost, "/v1/messages", tok, body); rec.Code != http.StatusCreated {
		t.Fatalf("first send: %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/v1/messages", tok, body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second send: %d", rec.Code)
	}
}

func TestRefresh(t *testing.T) {
	s := newTestServer(t, nil)
	if rec := s.do(t, http.MethodPost, "/v1/messages/refresh", token(t, "1"), nil); rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d", rec.Code)
	}
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
