package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient points both API hosts at the given test server and disables
// the politeness and retry delays
func testClient(server *httptest.Server) *Client {
	return &Client{
		apiKey:      "test-key",
		platformURL: server.URL,
		regionalURL: server.URL,
		httpClient:  server.Client(),
	}
}

func TestGetSummoner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Riot-Token"))
		assert.Equal(t, "/lol/summoner/v4/summoners/by-name/Faker", r.URL.Path)
		json.NewEncoder(w).Encode(SummonerDTO{PUUID: "some-puuid", Name: "Faker"})
	}))
	defer server.Close()

	summoner, err := testClient(server).GetSummoner(context.Background(), "Faker")
	require.NoError(t, err)
	assert.Equal(t, "some-puuid", summoner.PUUID)
}

func TestGetMatchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server).GetMatch(context.Background(), "JP1_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]string{"JP1_1"})
	}))
	defer server.Close()

	ids, err := testClient(server).GetMatchIDs(context.Background(), "puuid", 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"JP1_1"}, ids)
	assert.Equal(t, 3, calls)
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server).GetMatchIDs(context.Background(), "puuid", 0, 100)
	assert.Error(t, err)
	assert.Equal(t, maxRetries, calls)
}

func TestRateLimitWaitsAndRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode([]string{"JP1_1"})
	}))
	defer server.Close()

	start := time.Now()
	ids, err := testClient(server).GetMatchIDs(context.Background(), "puuid", 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"JP1_1"}, ids)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestRateLimitHonorsContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := testClient(server).GetMatchIDs(ctx, "puuid", 0, 100)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientErrorFailsFast(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := testClient(server).GetMatchIDs(context.Background(), "puuid", 0, 100)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetAllMatchIDsPagination(t *testing.T) {
	page1 := make([]string, pageSize)
	for i := range page1 {
		page1[i] = fmt.Sprintf("JP1_%d", i)
	}
	page2 := []string{"JP1_last"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		if start == 0 {
			json.NewEncoder(w).Encode(page1)
		} else {
			json.NewEncoder(w).Encode(page2)
		}
	}))
	defer server.Close()

	ids, err := testClient(server).GetAllMatchIDs(context.Background(), "puuid")
	require.NoError(t, err)
	assert.Len(t, ids, pageSize+1)
	assert.Equal(t, "JP1_last", ids[pageSize])
}
