// Package api holds clients for external services. The rankings client
// fetches the published competitive ranking tables that the refresh job
// mirrors into the local data dir.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/constants"
	"pokedex-tracker/internal/domain"

	"github.com/valyala/fasthttp"
)

type RankingsClient struct {
	baseURL     string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewRankingsClient(cfg *config.Config) *RankingsClient {
	return &RankingsClient{
		baseURL: strings.TrimRight(cfg.RankingsBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Enabled reports whether a source URL is configured. Without one the
// refresh job never runs and only pre-seeded tables are served.
func (c *RankingsClient) Enabled() bool {
	return c.baseURL != ""
}

func (c *RankingsClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RankingsClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	for header, dst := range map[string]*int{
		"X-Ratelimit-Limit":     &c.rateLimit.Limit,
		"X-Ratelimit-Remaining": &c.rateLimit.Remaining,
		"X-Ratelimit-Reset":     &c.rateLimit.Reset,
	} {
		if raw := string(resp.Header.Peek(header)); raw != "" {
			if val, err := strconv.Atoi(raw); err == nil {
				*dst = val
			}
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// FetchTable downloads one league/category ranking table. The body is
// validated as a JSON array before being returned so a source outage never
// replaces a good local table with an error page.
func (c *RankingsClient) FetchTable(ctx context.Context, category string, league domain.League) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/rankings-%d.json", c.baseURL, category, league.CPCap())

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	c.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("rankings source error: %d", resp.StatusCode())
	}

	body := append([]byte(nil), resp.Body()...)
	var probe []json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("rankings source returned a non-table payload: %w", err)
	}
	return body, nil
}
