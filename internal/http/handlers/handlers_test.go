package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-companion-backend/internal/auth"
	"github.com/tbourn/go-companion-backend/internal/domain"
	"github.com/tbourn/go-companion-backend/internal/http/middleware"
	"github.com/tbourn/go-companion-backend/internal/llm"
	"github.com/tbourn/go-companion-backend/internal/repo"
	"github.com/tbourn/go-companion-backend/internal/services"
)

// ----- fakes -----

type fakeVerifier struct{ user *domain.User }

func (f fakeVerifier) Verify(_ context.Context, token string) (*domain.User, error) {
	if token != "good" {
		return nil, &auth.Error{Kind: auth.KindUnauthenticated}
	}
	return f.user, nil
}

type fakeChat struct {
	convs []domain.Conversation
	msgs  []domain.Message

	events  []services.StreamEvent
	sendErr error // returned after events are emitted
	listErr error

	gotUser, gotConv, gotMsg string
	gotLimit                 int
}

func (f *fakeChat) List(_ context.Context, uid string) ([]domain.Conversation, error) {
	f.gotUser = uid
	return f.convs, f.listErr
}

func (f *fakeChat) History(_ context.Context, uid, conv string, limit int) ([]domain.Message, error) {
	f.gotUser, f.gotConv, f.gotLimit = uid, conv, limit
	if conv != "c1" {
		return nil, services.ErrConversationNotFound
	}
	return f.msgs, nil
}

func (f *fakeChat) Send(_ context.Context, uid, conv, msg string, emit func(services.StreamEvent) error) error {
	f.gotUser, f.gotConv, f.gotMsg = uid, conv, msg
	for _, ev := range f.events {
		if err := emit(ev); err != nil {
			return err
		}
	}
	return f.sendErr
}

type fakeJournal struct {
	insight string
	err     error
}

func (f fakeJournal) Insight(context.Context, string) (string, error) { return f.insight, f.err }

type fakeMood struct{}

func (fakeMood) Analyze(_ context.Context, _ string, start, end string) (*services.MoodAnalysis, error) {
	if _, _, err := services.ParseDateRange(start, end); err != nil {
		return nil, err
	}
	return &services.MoodAnalysis{Start: start, End: end, AverageScore: 3.67, TotalEntries: 3, Trend: domain.TrendImproving, Insight: "nice"}, nil
}

type fakeVoice struct {
	gotModel string
	err      error
}

func (f *fakeVoice) EphemeralToken(_ context.Context, model string) (*llm.VoiceToken, error) {
	f.gotModel = model
	if f.err != nil {
		return nil, f.err
	}
	return &llm.VoiceToken{
		Token:        "tok",
		ExpiresAt:    time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC),
		WebsocketURL: "wss://example/ws?model=" + model,
	}, nil
}

// ----- harness -----

type harness struct {
	r     *gin.Engine
	chat  *fakeChat
	voice *fakeVoice
}

func newHarness(t *testing.T, user *domain.User, journal JournalService) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if user == nil {
		user = &domain.User{UID: "u1"}
	}
	if journal == nil {
		journal = fakeJournal{insight: "reflection"}
	}
	hs := &harness{chat: &fakeChat{}, voice: &fakeVoice{}}
	h := New(hs.chat, journal, fakeMood{}, hs.voice)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/health", h.Health)
	r.GET("/", h.Root)
	api := r.Group("/api", middleware.Auth(fakeVerifier{user: user}))
	api.GET("/auth/me", h.Me)
	api.POST("/auth/verify", h.Verify)
	api.POST("/chat/message", h.SendMessage)
	api.GET("/chat/conversations", h.ListConversations)
	api.GET("/chat/history/:conversation_id", h.GetHistory)
	api.POST("/voice/ephemeral-token", h.EphemeralToken)
	api.POST("/journal/insight", h.JournalInsight)
	api.POST("/mood/analysis", h.MoodAnalysis)
	hs.r = r
	return hs
}

func (hs *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer good")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	hs.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return v
}

// sseFrames parses "data: <json>\n\n" frames.
func sseFrames(t *testing.T, body string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, block := range strings.Split(body, "\n\n") {
		if block == "" {
			continue
		}
		if !strings.HasPrefix(block, "data: ") {
			t.Fatalf("bad frame %q", block)
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(block, "data: ")), &m); err != nil {
			t.Fatalf("frame json: %v", err)
		}
		out = append(out, m)
	}
	return out
}

// ----- system -----

func TestHealthAndRoot(t *testing.T) {
	hs := newHarness(t, nil, nil)

	w := hs.do(http.MethodGet, "/health", "")
	if got := decode[HealthResponse](t, w); w.Code != http.StatusOK || got.Status != "healthy" || got.Version != Version {
		t.Fatalf("health: %d %+v", w.Code, got)
	}

	w = hs.do(http.MethodGet, "/", "")
	if got := decode[RootResponse](t, w); got.Docs != "/swagger/index.html" || got.Health != "/health" || got.Message == "" {
		t.Fatalf("root: %+v", got)
	}
}

// ----- auth -----

func TestMe_OptionalClaimsAreNull(t *testing.T) {
	hs := newHarness(t, &domain.User{UID: "u1", Email: "a@b.c"}, nil)
	w := hs.do(http.MethodGet, "/api/auth/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"uid":"u1"`) || !strings.Contains(body, `"email":"a@b.c"`) ||
		!strings.Contains(body, `"name":null`) || !strings.Contains(body, `"picture":null`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestVerify(t *testing.T) {
	hs := newHarness(t, nil, nil)
	w := hs.do(http.MethodPost, "/api/auth/verify", "")
	got := decode[VerifyResponse](t, w)
	if w.Code != http.StatusOK || !got.Valid || got.UID != "u1" {
		t.Fatalf("verify: %d %+v", w.Code, got)
	}
}

func TestMe_WithoutAuthMiddleware_Is401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(&fakeChat{}, fakeJournal{}, fakeMood{}, &fakeVoice{})
	r := gin.New()
	r.GET("/me", h.Me)
	r.POST("/verify", h.Verify)
	for _, tc := range []struct{ method, path string }{{http.MethodGet, "/me"}, {http.MethodPost, "/verify"}} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s = %d", tc.method, tc.path, w.Code)
		}
	}
}

// ----- chat -----

func TestSendMessage_StreamsFramesInOrder(t *testing.T) {
	hs := newHarness(t, nil, nil)
	hs.chat.events = []services.StreamEvent{
		{Type: services.EventConversationID, Value: "c9"},
		{Type: services.EventChunk, Value: "Hel"},
		{Type: services.EventChunk, Value: "lo"},
		{Type: services.EventDone, MessageID: "m2"},
	}

	w := hs.do(http.MethodPost, "/api/chat/message", `{"message":"  Hi there  "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%q", ct)
	}
	if w.Header().Get("Cache-Control") != "no-cache" || w.Header().Get("Connection") != "keep-alive" {
		t.Fatalf("missing stream headers: %v", w.Header())
	}
	if hs.chat.gotUser != "u1" || hs.chat.gotMsg != "Hi there" || hs.chat.gotConv != "" {
		t.Fatalf("service saw user=%q conv=%q msg=%q", hs.chat.gotUser, hs.chat.gotConv, hs.chat.gotMsg)
	}

	frames := sseFrames(t, w.Body.String())
	if len(frames) != 4 {
		t.Fatalf("frames=%v", frames)
	}
	if frames[0]["type"] != "conversation_id" || frames[0]["value"] != "c9" {
		t.Fatalf("frame0=%v", frames[0])
	}
	if frames[1]["value"] != "Hel" || frames[2]["value"] != "lo" {
		t.Fatalf("chunks=%v %v", frames[1], frames[2])
	}
	if frames[3]["type"] != "done" || frames[3]["message_id"] != "m2" {
		t.Fatalf("frame3=%v", frames[3])
	}
	if _, has := frames[1]["message_id"]; has {
		t.Fatalf("chunk frame must not carry message_id: %v", frames[1])
	}
}

func TestSendMessage_ErrorsBeforeStreamAreJSON(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"missing message", `{}`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"too long", fmt.Sprintf(`{"message":%q}`, strings.Repeat("x", 2001)), nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown conversation", `{"conversation_id":"nope","message":"hi"}`, services.ErrConversationNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"store down", `{"message":"hi"}`, fmt.Errorf("%w: create", repo.ErrStoreUnavailable), http.StatusServiceUnavailable, ErrCodeStoreUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hs := newHarness(t, nil, nil)
			hs.chat.sendErr = tc.err
			w := hs.do(http.MethodPost, "/api/chat/message", tc.body)
			if w.Code != tc.status {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if got := decode[ErrorResponse](t, w); got.Code != tc.code || got.RequestID == "" {
				t.Fatalf("body=%+v", got)
			}
		})
	}
}

func TestSendMessage_FailureAfterStartEmitsErrorFrame(t *testing.T) {
	hs := newHarness(t, nil, nil)
	hs.chat.events = []services.StreamEvent{{Type: services.EventChunk, Value: "partial"}}
	hs.chat.sendErr = fmt.Errorf("%w: stream reset", llm.ErrModelUnavailable)

	w := hs.do(http.MethodPost, "/api/chat/message", `{"conversation_id":"c1","message":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	frames := sseFrames(t, w.Body.String())
	if len(frames) != 2 || frames[1]["type"] != "error" || frames[1]["value"] != "the assistant is temporarily unavailable" {
		t.Fatalf("frames=%v", frames)
	}
	if strings.Contains(w.Body.String(), "stream reset") {
		t.Fatalf("internal cause leaked: %s", w.Body.String())
	}
}

func TestListConversations_DefaultsTitle(t *testing.T) {
	hs := newHarness(t, nil, nil)
	now := time.Now().UTC()
	hs.chat.convs = []domain.Conversation{
		{ID: "a", Title: "Work stress", MessageCount: 2, UpdatedAt: now},
		{ID: "b", Title: "", UpdatedAt: now},
	}
	w := hs.do(http.MethodGet, "/api/chat/conversations", "")
	got := decode[ConversationListResponse](t, w)
	if w.Code != http.StatusOK || len(got.Conversations) != 2 {
		t.Fatalf("status=%d body=%+v", w.Code, got)
	}
	if got.Conversations[0].Title != "Work stress" || got.Conversations[0].MessageCount != 2 || got.Conversations[1].Title != "Untitled" {
		t.Fatalf("unexpected summaries: %+v", got.Conversations)
	}
}

func TestListConversations_EmptyIsArray(t *testing.T) {
	hs := newHarness(t, nil, nil)
	w := hs.do(http.MethodGet, "/api/chat/conversations", "")
	if strings.TrimSpace(w.Body.String()) != `{"conversations":[]}` {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestListConversations_StoreDown(t *testing.T) {
	hs := newHarness(t, nil, nil)
	hs.chat.listErr = fmt.Errorf("%w: list", repo.ErrStoreUnavailable)
	if w := hs.do(http.MethodGet, "/api/chat/conversations", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	hs := newHarness(t, nil, nil)
	hs.chat.msgs = []domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "hi"},
		{ID: "m2", Role: domain.RoleAssistant, Content: "hello"},
	}

	w := hs.do(http.MethodGet, "/api/chat/history/c1", "")
	got := decode[ConversationHistoryResponse](t, w)
	if w.Code != http.StatusOK || got.ConversationID != "c1" || len(got.Messages) != 2 || got.Messages[1].Role != "assistant" {
		t.Fatalf("history: %d %+v", w.Code, got)
	}
	if hs.chat.gotLimit != 50 {
		t.Fatalf("default limit = %d", hs.chat.gotLimit)
	}

	for q, want := range map[string]int{"?limit=5": 5, "?limit=999": 200, "?limit=0": 50, "?limit=abc": 50} {
		hs.do(http.MethodGet, "/api/chat/history/c1"+q, "")
		if hs.chat.gotLimit != want {
			t.Fatalf("%s -> limit %d; want %d", q, hs.chat.gotLimit, want)
		}
	}

	w = hs.do(http.MethodGet, "/api/chat/history/other", "")
	if w.Code != http.StatusNotFound || decode[ErrorResponse](t, w).Message != "Conversation not found" {
		t.Fatalf("404 expected, got %d %s", w.Code, w.Body.String())
	}
}

// ----- journal -----

func TestJournalInsight(t *testing.T) {
	hs := newHarness(t, nil, nil)
	w := hs.do(http.MethodPost, "/api/journal/insight", `{"journal_id":"j1","content":"A calm day."}`)
	got := decode[JournalInsightResponse](t, w)
	if w.Code != http.StatusOK || got.Insight != "reflection" || got.JournalID != "j1" {
		t.Fatalf("insight: %d %+v", w.Code, got)
	}

	for _, body := range []string{`{"content":"x"}`, `{"journal_id":"j1"}`, `not json`} {
		if w := hs.do(http.MethodPost, "/api/journal/insight", body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s -> %d", body, w.Code)
		}
	}
}

func TestJournalInsight_ModelUnavailable(t *testing.T) {
	hs := newHarness(t, nil, fakeJournal{err: fmt.Errorf("%w: quota", llm.ErrModelUnavailable)})
	w := hs.do(http.MethodPost, "/api/journal/insight", `{"journal_id":"j1","content":"x"}`)
	if w.Code != http.StatusServiceUnavailable || decode[ErrorResponse](t, w).Code != ErrCodeModelUnavailable {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

// ----- mood -----

func TestMoodAnalysis(t *testing.T) {
	hs := newHarness(t, nil, nil)
	w := hs.do(http.MethodPost, "/api/mood/analysis", `{"start_date":"2025-05-01","end_date":"2025-05-31"}`)
	got := decode[MoodAnalysisResponse](t, w)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got.Period.Start != "2025-05-01" || got.Period.End != "2025-05-31" ||
		got.Summary.AverageScore != 3.67 || got.Summary.TotalEntries != 3 ||
		got.Summary.Trend != domain.TrendImproving || got.AIInsight != "nice" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestMoodAnalysis_BadDates(t *testing.T) {
	hs := newHarness(t, nil, nil)
	cases := map[string]string{
		`{"start_date":"05/01/2025","end_date":"2025-05-31"}`: "Invalid date format. Use YYYY-MM-DD.",
		`{"start_date":"2025-06-01","end_date":"2025-05-31"}`: "Start date must be before end date.",
		`{"start_date":"2025-06-01"}`:                         "start_date and end_date are required",
	}
	for body, msg := range cases {
		w := hs.do(http.MethodPost, "/api/mood/analysis", body)
		if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Message != msg {
			t.Fatalf("%s -> %d %s", body, w.Code, w.Body.String())
		}
	}
}

// ----- voice -----

func TestEphemeralToken(t *testing.T) {
	hs := newHarness(t, nil, nil)

	// no body at all
	w := hs.do(http.MethodPost, "/api/voice/ephemeral-token", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decode[EphemeralTokenResponse](t, w)
	if got.Token != "tok" || got.ExpiresAt != "2025-06-01T12:10:00Z" || hs.voice.gotModel != "" {
		t.Fatalf("unexpected: %+v model=%q", got, hs.voice.gotModel)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("credential responses must not be cached")
	}

	// explicit model
	hs.do(http.MethodPost, "/api/voice/ephemeral-token", `{"model":" gemini-live "}`)
	if hs.voice.gotModel != "gemini-live" {
		t.Fatalf("model=%q", hs.voice.gotModel)
	}

	if w := hs.do(http.MethodPost, "/api/voice/ephemeral-token", `{bad`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	hs.voice.err = fmt.Errorf("%w: mint", llm.ErrModelUnavailable)
	if w := hs.do(http.MethodPost, "/api/voice/ephemeral-token", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("mint failure -> %d", w.Code)
	}
}

func TestUnauthenticatedRequestsNeverReachServices(t *testing.T) {
	hs := newHarness(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()
	hs.r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized || w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("status=%d headers=%v", w.Code, w.Header())
	}
	if hs.chat.gotUser != "" {
		t.Fatalf("service was called")
	}
}
