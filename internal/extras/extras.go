package extras

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	appLog "schoolcal/internal/log"
)

// KV is the injectable cache used for the last-good proxy and the daily
// extras responses. An explicit store keeps this package testable; nothing
// here reaches for ambient state.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryKV is the in-process KV used by the server.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(key string) (string, bool) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	return v, ok
}

func (kv *MemoryKV) Set(key, value string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
}

const lastGoodProxyKey = "proxy:last_good"

// Quote is the quote-of-the-day shown on the dashboard.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Options configures a Client.
type Options struct {
	// Proxies is the ordered CORS-proxy prefix list; the target URL is
	// appended query-escaped. An empty list means fetch directly.
	Proxies      []string
	QuoteURL     string
	WordURL      string
	TermDatesURL string
	HTTPClient   *http.Client
}

// Client fetches the daily extras (quote, word of the day, term dates)
// through the proxy fan-out, remembering which proxy last worked and
// caching each response for the calendar day.
type Client struct {
	http *http.Client
	kv   KV
	opts Options
	now  func() time.Time
}

func NewClient(kv KV, opts Options) *Client {
	c := &Client{
		http: opts.HTTPClient,
		kv:   kv,
		opts: opts,
		now:  time.Now,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

// QuoteOfTheDay returns today's quote, fetching it at most once per day.
// The upstream shape is the ZenQuotes array form.
func (c *Client) QuoteOfTheDay(ctx context.Context) (Quote, error) {
	if c.opts.QuoteURL == "" {
		return Quote{}, errors.New("quote endpoint not configured")
	}

	body, err := c.daily(ctx, "quote", c.opts.QuoteURL)
	if err != nil {
		return Quote{}, err
	}

	var raw []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return Quote{}, fmt.Errorf("unexpected quote payload")
	}
	return Quote{Text: raw[0].Q, Author: raw[0].A}, nil
}

// WordOfTheDay returns today's word payload as raw JSON; the UI renders
// whatever fields the configured endpoint provides.
func (c *Client) WordOfTheDay(ctx context.Context) (json.RawMessage, error) {
	if c.opts.WordURL == "" {
		return nil, errors.New("word endpoint not configured")
	}
	return c.daily(ctx, "word", c.opts.WordURL)
}

// TermDates returns the term-dates payload as raw JSON, cached per day.
func (c *Client) TermDates(ctx context.Context) (json.RawMessage, error) {
	if c.opts.TermDatesURL == "" {
		return nil, errors.New("term dates endpoint not configured")
	}
	return c.daily(ctx, "terms", c.opts.TermDatesURL)
}

// daily serves kind's payload from the day-keyed cache, fetching through
// the proxy fan-out on a miss.
func (c *Client) daily(ctx context.Context, kind, target string) ([]byte, error) {
	key := kind + ":" + c.now().Format("2006-01-02")
	if cached, ok := c.kv.Get(key); ok {
		return []byte(cached), nil
	}

	body, err := c.fetchVia(ctx, target)
	if err != nil {
		return nil, err
	}

	c.kv.Set(key, string(body))
	return body, nil
}

// fetchVia tries the remembered last-good proxy first, then the configured
// order. With no proxies configured the target is fetched directly.
func (c *Client) fetchVia(ctx context.Context, target string) ([]byte, error) {
	candidates := c.proxyOrder()
	if len(candidates) == 0 {
		return c.get(ctx, target)
	}

	var lastErr error
	for _, proxy := range candidates {
		body, err := c.get(ctx, proxy+url.QueryEscape(target))
		if err != nil {
			appLog.Warn("extras proxy failed", "proxy", proxy, "err", err)
			lastErr = err
			continue
		}
		c.kv.Set(lastGoodProxyKey, proxy)
		return body, nil
	}
	return nil, fmt.Errorf("all proxies failed: %w", lastErr)
}

// proxyOrder moves the last-good proxy to the front of the configured list.
func (c *Client) proxyOrder() []string {
	proxies := c.opts.Proxies
	lastGood, ok := c.kv.Get(lastGoodProxyKey)
	if !ok {
		return proxies
	}

	out := make([]string, 0, len(proxies))
	out = append(out, lastGood)
	for _, p := range proxies {
		if p != lastGood {
			out = append(out, p)
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}
	return io.ReadAll(resp.Body)
}
