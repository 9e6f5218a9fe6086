package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/yapli/internal/adapter/api"
	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/yapli/internal/adapter/repository/redis"
	"github.com/V4T54L/yapli/internal/client"
	"github.com/V4T54L/yapli/internal/pkg/config"
	"github.com/V4T54L/yapli/internal/usecase"
)

// newIntegrationServer wires the API against real Postgres and Redis. It is
// skipped unless YAPLI_TEST_POSTGRES_URL and YAPLI_TEST_REDIS_URL are set.
func newIntegrationServer(t *testing.T) *httptest.Server {
	t.Helper()
	pgURL := os.Getenv("YAPLI_TEST_POSTGRES_URL")
	redisURL := os.Getenv("YAPLI_TEST_REDIS_URL")
	if pgURL == "" || redisURL == "" {
		t.Skip("YAPLI_TEST_POSTGRES_URL and YAPLI_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := postgres.Open(ctx, pgURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, postgres.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, "TRUNCATE users, chatrooms, messages, link_previews CASCADE")
	require.NoError(t, err)

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })

	users := postgres.NewUserRepository(db)
	rooms := postgres.NewChatroomRepository(db)
	messages := postgres.NewMessageRepository(db)
	broker := redisrepo.NewMessageBroker(rdb, logger)

	cfg := &config.Config{
		JWTSecret:      "integration-secret",
		JWTExpiry:      time.Hour,
		CheckNameRPS:   1000,
		CheckNameBurst: 1000,
		MaxBodyBytes:   65536,
		SSEHeartbeat:   time.Second,
	}
	router := api.NewRouter(cfg, logger, metrics.New(prometheus.NewRegistry()), api.Services{
		Names:      usecase.NewRoomNameUseCase(users, rooms, logger),
		Rooms:      usecase.NewRoomUseCase(users, rooms, nil, logger),
		Messages:   usecase.NewMessageUseCase(rooms, messages, broker, logger),
		Auth:       usecase.NewAuthUseCase(users, cfg.JWTSecret, cfg.JWTExpiry, logger),
		Subscriber: broker,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func register(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	body := `{"name":"Test User","email":"` + email + `","password":"password123"}`
	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token
}

func TestIntegration_RoomNameFlow(t *testing.T) {
	srv := newIntegrationServer(t)
	ctx := context.Background()

	alice := client.New(srv.URL, register(t, srv, "alice@example.com"), nil)
	bob := client.New(srv.URL, register(t, srv, "bob@example.com"), nil)

	res, err := alice.CheckRoomName(ctx, "  General  ")
	require.NoError(t, err)
	assert.Equal(t, client.CheckResult{Available: true, Title: "General"}, res)

	_, err = alice.CreateRoom(ctx, "General")
	require.NoError(t, err)

	res, err = alice.CheckRoomName(ctx, "General")
	require.NoError(t, err)
	assert.False(t, res.Available)

	res, err = alice.CheckRoomName(ctx, "general")
	require.NoError(t, err)
	assert.True(t, res.Available, "titles match case-sensitively")

	res, err = bob.CheckRoomName(ctx, "General")
	require.NoError(t, err)
	assert.True(t, res.Available, "titles are scoped per owner")

	_, err = alice.CreateRoom(ctx, "General")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "You already have a room with this name", apiErr.Message)
}

func TestIntegration_ConcurrentCreateHasOneWinner(t *testing.T) {
	srv := newIntegrationServer(t)
	ctx := context.Background()
	alice := client.New(srv.URL, register(t, srv, "alice@example.com"), nil)

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, conflicts, passed := 0, 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := alice.CheckRoomName(ctx, "Race")
			if err != nil || !res.Available {
				return
			}
			_, err = alice.CreateRoom(ctx, "Race")
			mu.Lock()
			defer mu.Unlock()
			passed++
			if err == nil {
				created++
				return
			}
			var apiErr *client.APIError
			if assert.ErrorAs(t, err, &apiErr) && apiErr.Status == http.StatusConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, passed, created+conflicts, "every losing create reports a conflict")
	res, err := alice.CheckRoomName(ctx, "Race")
	require.NoError(t, err)
	assert.False(t, res.Available)
}

func TestIntegration_MessageStream(t *testing.T) {
	srv := newIntegrationServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := client.New(srv.URL, register(t, srv, "alice@example.com"), nil).CreateRoom(ctx, "General")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/rooms/"+room.RoomURL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	post, err := http.Post(srv.URL+"/api/rooms/"+room.RoomURL+"/messages", "application/json",
		strings.NewReader(`{"alias":"Alice","message":"Hello everyone!"}`))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusCreated, post.StatusCode)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			assert.Contains(t, line, `"message":"Hello everyone!"`)
			return
		}
	}
	t.Fatalf("stream ended without a message: %v", scanner.Err())
}
