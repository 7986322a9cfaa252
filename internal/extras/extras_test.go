package extras

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport routes requests by URL prefix and counts every call.
type stubTransport struct {
	responses map[string]stubResponse // keyed by URL prefix
	calls     []string
}

type stubResponse struct {
	status int
	body   string
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	s.calls = append(s.calls, u)

	for prefix, resp := range s.responses {
		if strings.HasPrefix(u, prefix) {
			return &http.Response{
				StatusCode: resp.status,
				Status:     http.StatusText(resp.status),
				Body:       io.NopCloser(strings.NewReader(resp.body)),
				Header:     make(http.Header),
				Request:    req,
			}, nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusBadGateway,
		Status:     "502 Bad Gateway",
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestClient(tr *stubTransport, kv KV, opts Options) *Client {
	opts.HTTPClient = &http.Client{Transport: tr}
	c := NewClient(kv, opts)
	c.now = func() time.Time { return time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC) }
	return c
}

const quoteJSON = `[{"q":"Stay curious.","a":"Anon"}]`

func TestQuoteOfTheDayDirect(t *testing.T) {
	tr := &stubTransport{responses: map[string]stubResponse{
		"https://quotes.example/today": {status: 200, body: quoteJSON},
	}}
	c := newTestClient(tr, NewMemoryKV(), Options{QuoteURL: "https://quotes.example/today"})

	q, err := c.QuoteOfTheDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Stay curious.", q.Text)
	assert.Equal(t, "Anon", q.Author)
}

func TestProxyFailoverRemembersLastGood(t *testing.T) {
	tr := &stubTransport{responses: map[string]stubResponse{
		"https://proxy-a.example/": {status: 503, body: ""},
		"https://proxy-b.example/": {status: 200, body: quoteJSON},
	}}
	kv := NewMemoryKV()
	c := newTestClient(tr, kv, Options{
		Proxies:  []string{"https://proxy-a.example/?u=", "https://proxy-b.example/?u="},
		QuoteURL: "https://quotes.example/today",
	})

	_, err := c.QuoteOfTheDay(context.Background())
	require.NoError(t, err)

	// Proxy A failed, B succeeded and was remembered.
	lastGood, ok := kv.Get(lastGoodProxyKey)
	require.True(t, ok)
	assert.Equal(t, "https://proxy-b.example/?u=", lastGood)

	// A fresh fetch (different cache key) tries B first and never hits A.
	c.now = func() time.Time { return time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC) }
	callsBefore := len(tr.calls)
	_, err = c.QuoteOfTheDay(context.Background())
	require.NoError(t, err)
	require.Len(t, tr.calls, callsBefore+1)
	assert.True(t, strings.HasPrefix(tr.calls[callsBefore], "https://proxy-b.example/"))
}

func TestAllProxiesFailing(t *testing.T) {
	tr := &stubTransport{responses: map[string]stubResponse{}}
	c := newTestClient(tr, NewMemoryKV(), Options{
		Proxies:  []string{"https://proxy-a.example/?u="},
		QuoteURL: "https://quotes.example/today",
	})

	_, err := c.QuoteOfTheDay(context.Background())
	assert.Error(t, err)
}

func TestDailyCachePreventsRefetch(t *testing.T) {
	tr := &stubTransport{responses: map[string]stubResponse{
		"https://quotes.example/today": {status: 200, body: quoteJSON},
	}}
	c := newTestClient(tr, NewMemoryKV(), Options{QuoteURL: "https://quotes.example/today"})

	_, err := c.QuoteOfTheDay(context.Background())
	require.NoError(t, err)
	_, err = c.QuoteOfTheDay(context.Background())
	require.NoError(t, err)
	assert.Len(t, tr.calls, 1)

	// The cache key rolls over with the day.
	c.now = func() time.Time { return time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC) }
	_, err = c.QuoteOfTheDay(context.Background())
	require.NoError(t, err)
	assert.Len(t, tr.calls, 2)
}

func TestWordAndTermDatesPassThrough(t *testing.T) {
	tr := &stubTransport{responses: map[string]stubResponse{
		"https://word.example/":  {status: 200, body: `{"word":"sesquipedalian"}`},
		"https://terms.example/": {status: 200, body: `{"terms":[]}`},
	}}
	c := newTestClient(tr, NewMemoryKV(), Options{
		WordURL:      "https://word.example/today",
		TermDatesURL: "https://terms.example/dates",
	})

	word, err := c.WordOfTheDay(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"word":"sesquipedalian"}`, string(word))

	terms, err := c.TermDates(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"terms":[]}`, string(terms))
}

func TestUnconfiguredEndpoints(t *testing.T) {
	c := NewClient(NewMemoryKV(), Options{})

	_, err := c.QuoteOfTheDay(context.Background())
	assert.Error(t, err)
	_, err = c.WordOfTheDay(context.Background())
	assert.Error(t, err)
	_, err = c.TermDates(context.Background())
	assert.Error(t, err)
}

func TestQuoteRejectsUnexpectedPayload(t *testing.T) {
	tr := &stubTransport{responses: map[string]stubResponse{
		"https://quotes.example/today": {status: 200, body: `{"not":"an array"}`},
	}}
	c := newTestClient(tr, NewMemoryKV(), Options{QuoteURL: "https://quotes.example/today"})

	_, err := c.QuoteOfTheDay(context.Background())
	assert.Error(t, err)
}
