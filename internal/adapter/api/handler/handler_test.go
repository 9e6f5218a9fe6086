package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/V4T54L/yapli/internal/adapter/api/middleware"
	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/domain/mocks"
	"github.com/V4T54L/yapli/internal/usecase"
)

func TestMessageHandler(t *testing.T) {
	room := domain.Chatroom{ID: uuid.New(), Title: "General", RoomURL: "696fcd", UserID: uuid.New()}

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Post Message",
			method:         http.MethodPost,
			target:         "/api/rooms/696fcd/messages",
			body:           `{"alias":" Alice ","message":"Hello!"}`,
			expectedStatus: http.StatusCreated,
			expectedBody:   `"alias":"Alice"`,
		},
		{
			name:           "Post With Link Preview",
			method:         http.MethodPost,
			target:         "/api/rooms/696fcd/messages",
			body:           `{"alias":"Bob","message":"see https://yapli.chat","link_preview":{"url":"https://yapli.chat","title":"Yapli"}}`,
			expectedStatus: http.StatusCreated,
			expectedBody:   `"link_preview":{"url":"https://yapli.chat"`,
		},
		{
			name:           "Missing Alias",
			method:         http.MethodPost,
			target:         "/api/rooms/696fcd/messages",
			body:           `{"message":"Hello!"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Alias is required"}`,
		},
		{
			name:           "Unknown Room",
			method:         http.MethodPost,
			target:         "/api/rooms/zzzzzz/messages",
			body:           `{"alias":"Alice","message":"Hello!"}`,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Not found"}`,
		},
		{
			name:           "List Messages",
			method:         http.MethodGet,
			target:         "/api/rooms/696fcd/messages?limit=10",
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "Bad Limit",
			method:         http.MethodGet,
			target:         "/api/rooms/696fcd/messages?limit=ten",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Limit must be a non-negative integer"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms := &mocks.MockChatroomRepository{Rooms: []domain.Chatroom{room}}
			messages := &mocks.MockMessageRepository{}
			publisher := &mocks.MockPublisher{}
			m := metrics.New(prometheus.NewRegistry())
			uc := usecase.NewMessageUseCase(rooms, messages, publisher, testLogger())
			h := NewMessageHandler(uc, testLogger(), m, 4096)

			r := chi.NewRouter()
			r.Post("/api/rooms/{roomURL}/messages", h.Post)
			r.Get("/api/rooms/{roomURL}/messages", h.List)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, newRequest(tt.method, tt.target, tt.body, ""))

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("handler returned unexpected body: got %q want it to contain %q", rr.Body.String(), tt.expectedBody)
			}
			if rr.Code == http.StatusCreated {
				if len(publisher.Published["696fcd"]) != 1 {
					t.Errorf("expected message to be published once, got %d", len(publisher.Published["696fcd"]))
				}
				if got := testutil.ToFloat64(m.MessagesPosted); got != 1 {
					t.Errorf("expected messages_posted 1, got %v", got)
				}
			}
		})
	}
}

func TestAuthHandler(t *testing.T) {
	users := mocks.NewMockUserRepository()
	m := metrics.New(prometheus.NewRegistry())
	uc := usecase.NewAuthUseCase(users, "test-secret", time.Hour, testLogger())
	h := NewAuthHandler(uc, testLogger(), m, 4096, time.Hour)

	register := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.Register(rr, newRequest(http.MethodPost, "/api/auth/register", body, ""))
		return rr
	}
	login := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.Login(rr, newRequest(http.MethodPost, "/api/auth/login", body, ""))
		return rr
	}

	rr := register(`{"name":"Test User","email":"TestUser@example.com","password":"password123"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"token":"`) {
		t.Errorf("register: missing token in %s", rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookie || !cookies[0].HttpOnly {
		t.Errorf("register: expected an HttpOnly session cookie, got %+v", cookies)
	}

	rr = register(`{"name":"Again","email":"testuser@example.com","password":"password123"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", rr.Code)
	}

	rr = register(`{"name":"Short","email":"short@example.com","password":"abc"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("short password: expected 400, got %d", rr.Code)
	}

	rr = login(`{"email":"testuser@example.com","password":"password123"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("login: expected 200, got %d", rr.Code)
	}

	rr = login(`{"email":"testuser@example.com","password":"wrong-password"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rr.Code)
	}

	rr = login(`{"email":"nobody@example.com","password":"password123"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: expected 401, got %d", rr.Code)
	}

	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", "invalid_credentials")); got != 2 {
		t.Errorf("expected 2 failed logins, got %v", got)
	}
}

// fakeSubscriber hands out a pre-filled channel.
type fakeSubscriber struct {
	messages  []domain.Message
	err       error
	cancelled bool
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, roomURL string) (<-chan domain.Message, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	ch := make(chan domain.Message, len(f.messages))
	for _, msg := range f.messages {
		ch <- msg
	}
	close(ch)
	return ch, func() { f.cancelled = true }, nil
}

func TestRoomStream(t *testing.T) {
	room := domain.Chatroom{ID: uuid.New(), Title: "General", RoomURL: "696fcd", UserID: uuid.New()}
	rooms := usecase.NewRoomUseCase(nil, &mocks.MockChatroomRepository{Rooms: []domain.Chatroom{room}}, nil, testLogger())

	newRouter := func(sub domain.MessageSubscriber, m *metrics.Metrics) http.Handler {
		r := chi.NewRouter()
		r.Handle("/api/rooms/{roomURL}/events", NewRoomStream(rooms, sub, testLogger(), m, time.Minute))
		return r
	}

	t.Run("Streams Messages", func(t *testing.T) {
		msg := domain.Message{ID: uuid.New(), ChatroomID: room.ID, Alias: "Alice", Text: "Hello!"}
		sub := &fakeSubscriber{messages: []domain.Message{msg}}
		m := metrics.New(prometheus.NewRegistry())

		rr := httptest.NewRecorder()
		newRouter(sub, m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rooms/696fcd/events", nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("unexpected content type %q", ct)
		}
		body := rr.Body.String()
		if !strings.Contains(body, "event: message\n") || !strings.Contains(body, `"message":"Hello!"`) {
			t.Errorf("unexpected stream body %q", body)
		}
		if !sub.cancelled {
			t.Error("subscription was not cancelled")
		}
		if got := testutil.ToFloat64(m.SSEClients); got != 0 {
			t.Errorf("expected client gauge back at 0, got %v", got)
		}
	})

	t.Run("Unknown Room", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newRouter(&fakeSubscriber{}, metrics.New(prometheus.NewRegistry())).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rooms/zzzzzz/events", nil))
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("Subscribe Failure", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newRouter(&fakeSubscriber{err: errors.New("redis down")}, metrics.New(prometheus.NewRegistry())).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rooms/696fcd/events", nil))
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rr.Code)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	healthy := func(ctx context.Context) error { return nil }
	failing := func(ctx context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name           string
		checks         map[string]HealthCheck
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "All Healthy",
			checks:         map[string]HealthCheck{"postgres": healthy, "redis": healthy},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:           "Redis Down",
			checks:         map[string]HealthCheck{"postgres": healthy, "redis": failing},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"degraded","checks":{"postgres":"ok","redis":"dial tcp: connection refused"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks, time.Second, testLogger())
			rr := httptest.NewRecorder()
			h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tt.expectedBody {
				t.Errorf("handler returned unexpected body: got %q want %q", got, tt.expectedBody)
			}
		})
	}
}
