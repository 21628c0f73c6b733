package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/riftstats/riftstats/internal/domain"
)

const (
	pageSize          = 100
	maxRetries        = 3
	defaultRetryDelay = 5 * time.Second
	defaultRetryAfter = 120 * time.Second
)

// ErrNotFound is returned for 404 responses (e.g. expired matches)
var ErrNotFound = errors.New("riot: data not found")

// RateLimitError signals a 429 response. The client handles it internally
// by waiting, but it can surface if the context is cancelled first.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("riot: rate limit exceeded, retry after %s", e.RetryAfter)
}

// platformHosts maps a platform region to its API host
var platformHosts = map[string]string{
	"jp1":  "https://jp1.api.riotgames.com",
	"kr":   "https://kr.api.riotgames.com",
	"na1":  "https://na1.api.riotgames.com",
	"euw1": "https://euw1.api.riotgames.com",
	"eun1": "https://eun1.api.riotgames.com",
	"br1":  "https://br1.api.riotgames.com",
	"la1":  "https://la1.api.riotgames.com",
	"la2":  "https://la2.api.riotgames.com",
	"oc1":  "https://oc1.api.riotgames.com",
	"tr1":  "https://tr1.api.riotgames.com",
	"ru":   "https://ru.api.riotgames.com",
}

// regionalRouting maps a platform region to the regional routing value used
// by the match API
var regionalRouting = map[string]string{
	"jp1": "asia", "kr": "asia",
	"na1": "americas", "br1": "americas", "la1": "americas", "la2": "americas",
	"euw1": "europe", "eun1": "europe", "tr1": "europe", "ru": "europe",
	"oc1": "sea",
}

// Client talks to the Riot Games API with retry and rate-limit handling
type Client struct {
	apiKey       string
	platformURL  string
	regionalURL  string
	httpClient   *http.Client
	requestDelay time.Duration
	retryDelay   time.Duration
}

// NewClient creates a client for the given platform region. requestDelay is
// the politeness pause after each successful call.
func NewClient(apiKey, region string, requestDelay time.Duration) *Client {
	platform, ok := platformHosts[region]
	if !ok {
		platform = platformHosts["jp1"]
	}
	routing, ok := regionalRouting[region]
	if !ok {
		routing = "asia"
	}
	return &Client{
		apiKey:       apiKey,
		platformURL:  platform,
		regionalURL:  fmt.Sprintf("https://%s.api.riotgames.com", routing),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		requestDelay: requestDelay,
		retryDelay:   defaultRetryDelay,
	}
}

// SummonerDTO is the summoner-v4 response
type SummonerDTO struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	SummonerLevel int    `json:"summonerLevel"`
}

// GetSummoner fetches summoner info by name
func (c *Client) GetSummoner(ctx context.Context, name string) (*SummonerDTO, error) {
	endpoint := c.platformURL + "/lol/summoner/v4/summoners/by-name/" + url.PathEscape(name)
	var summoner SummonerDTO
	if err := c.getJSON(ctx, endpoint, nil, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// GetMatchIDs fetches one page of match ids for a player, newest first
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, start, count int) ([]string, error) {
	endpoint := c.regionalURL + "/lol/match/v5/matches/by-puuid/" + url.PathEscape(puuid) + "/ids"
	params := url.Values{}
	params.Set("start", strconv.Itoa(start))
	params.Set("count", strconv.Itoa(count))

	var ids []string
	if err := c.getJSON(ctx, endpoint, params, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetAllMatchIDs pages through the full match history
func (c *Client) GetAllMatchIDs(ctx context.Context, puuid string) ([]string, error) {
	var all []string
	start := 0
	for {
		batch, err := c.GetMatchIDs(ctx, puuid, start, pageSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			break
		}
		start += pageSize
	}
	return all, nil
}

// GetMatch fetches the raw match detail
func (c *Client) GetMatch(ctx context.Context, matchID string) (*MatchDTO, error) {
	endpoint := c.regionalURL + "/lol/match/v5/matches/" + url.PathEscape(matchID)
	var match MatchDTO
	if err := c.getJSON(ctx, endpoint, nil, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// FetchNew retrieves and normalizes the matches played since the given time.
// A zero since fetches the entire history. Per-match failures (expired
// matches, malformed payloads) are logged and skipped.
func (c *Client) FetchNew(ctx context.Context, puuid string, since time.Time) ([]domain.Match, error) {
	var ids []string
	var err error
	if since.IsZero() {
		log.Printf("Fetching all match IDs...")
		ids, err = c.GetAllMatchIDs(ctx, puuid)
	} else {
		log.Printf("Fetching matches since %s...", since.Format(time.RFC3339))
		ids, err = c.fetchIDsSince(ctx, puuid, since.UnixMilli())
	}
	if err != nil {
		return nil, err
	}

	log.Printf("Found %d matches to fetch", len(ids))

	var matches []domain.Match
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Printf("Fetching match %d/%d: %s", i+1, len(ids), id)

		raw, err := c.GetMatch(ctx, id)
		if errors.Is(err, ErrNotFound) {
			log.Printf("Skipping match %s (not found)", id)
			continue
		}
		if err != nil {
			log.Printf("Error fetching match %s: %v", id, err)
			continue
		}

		match, err := Normalize(raw, puuid)
		if err != nil {
			log.Printf("Error processing match %s: %v", id, err)
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// fetchIDsSince walks id pages newest-first, probing the first match of each
// batch to stop once a page falls entirely below the threshold
func (c *Client) fetchIDsSince(ctx context.Context, puuid string, threshold int64) ([]string, error) {
	var ids []string
	start := 0
	for {
		batch, err := c.GetMatchIDs(ctx, puuid, start, pageSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		first, err := c.GetMatch(ctx, batch[0])
		if err != nil {
			return nil, err
		}
		if first.Info.GameCreation < threshold {
			// Page straddles the threshold: keep only the new matches
			for _, id := range batch {
				detail, err := c.GetMatch(ctx, id)
				if err != nil {
					return nil, err
				}
				if detail.Info.GameCreation < threshold {
					break
				}
				ids = append(ids, id)
			}
			break
		}

		ids = append(ids, batch...)
		if len(batch) < pageSize {
			break
		}
		start += pageSize
	}
	return ids, nil
}

// getJSON performs a GET with retry. 5xx and transport errors are retried
// with a fixed delay; 429 waits out Retry-After and starts over; 404 maps
// to ErrNotFound; other 4xx fail immediately.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	for {
		err := retry.Do(
			func() error {
				status, header, body, err := c.do(ctx, endpoint, params)
				if err != nil {
					return err
				}
				switch {
				case status == http.StatusTooManyRequests:
					return retry.Unrecoverable(&RateLimitError{RetryAfter: retryAfter(header)})
				case status == http.StatusNotFound:
					return retry.Unrecoverable(ErrNotFound)
				case status >= 500:
					return fmt.Errorf("server error: %d", status)
				case status >= 400:
					return retry.Unrecoverable(fmt.Errorf("client error: %d: %s", status, body))
				}
				return json.Unmarshal(body, out)
			},
			retry.Context(ctx),
			retry.Attempts(maxRetries),
			retry.Delay(c.retryDelay),
			retry.DelayType(retry.FixedDelay),
			retry.LastErrorOnly(true),
		)

		var rateLimited *RateLimitError
		if errors.As(err, &rateLimited) {
			log.Printf("Rate limit hit, waiting %s...", rateLimited.RetryAfter)
			if err := sleep(ctx, rateLimited.RetryAfter); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		return sleep(ctx, c.requestDelay)
	}
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (int, http.Header, []byte, error) {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, resp.Header, body, nil
}

func retryAfter(header http.Header) time.Duration {
	if v := header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
