// Package wordreference fetches and classifies WordReference lookups.
package wordreference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/heartmarshall/wrdict/internal/config"
	"github.com/heartmarshall/wrdict/internal/domain"
	"github.com/heartmarshall/wrdict/internal/parser"
)

const (
	defaultBaseURL   = "https://www.wordreference.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/56.0.2924.87 Safari/537.36"
	defaultTimeout   = 30 * time.Second
	pageStep         = 100
	retryBackoff     = 500 * time.Millisecond
	maxBodySize      = 8 << 20
)

var defaultMarkers = []string{"captcha", "cf-challenge", "challenge-form", "are you a robot"}

// Page is a raw response for one lookup URL.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Provider queries WordReference. It holds no per-lookup state and is safe
// for concurrent use.
type Provider struct {
	baseURL   string
	userAgent string
	markers   []string
	maxPages  int
	clients   []*http.Client
	log       *slog.Logger
}

// NewProvider creates a Provider from fetch settings. With proxies configured
// every request goes through a randomly chosen one.
func NewProvider(cfg config.FetchConfig, logger *slog.Logger) (*Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	log := logger.With("adapter", "wordreference")
	th := newThrottle(cfg.RequestsPerMinute)

	var clients []*http.Client
	for _, raw := range cfg.Proxies {
		proxyURL, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("wordreference: parse proxy %q: %w", raw, err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		clients = append(clients, &http.Client{Timeout: timeout, Transport: buildTransport(transport, th, log)})
	}
	if len(clients) == 0 {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		clients = []*http.Client{{Timeout: timeout, Transport: buildTransport(transport, th, log)}}
	}

	p := &Provider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		markers:   cfg.ChallengeMarkers,
		maxPages:  max(cfg.MaxPages, 1),
		clients:   clients,
		log:       log,
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	if p.userAgent == "" {
		p.userAgent = defaultUserAgent
	}
	if len(p.markers) == 0 {
		p.markers = defaultMarkers
	}
	return p, nil
}

// NewProviderWithURL creates a Provider with default settings against a
// custom base URL (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	p, _ := NewProvider(config.FetchConfig{BaseURL: baseURL}, logger)
	return p
}

// LookupURL builds the query URL for a word and language pair. The word is
// NFKD-normalized and path-escaped.
func (p *Provider) LookupURL(word, from, to string, page int) string {
	u := p.baseURL + "/" + from + to + "/" + url.PathEscape(norm.NFKD.String(word))
	if page > 0 {
		u += "?start=" + strconv.Itoa(page*pageStep)
	}
	return u
}

// Fetch downloads one result page. A non-2xx status is not an error here;
// only transport failures are.
func (p *Provider) Fetch(ctx context.Context, word, from, to string, page int) (*Page, error) {
	reqURL := p.LookupURL(word, from, to, page)

	p.log.DebugContext(ctx, "wordreference request", slog.String("word", word), slog.Int("page", page))

	resp, err := p.doWithRetry(ctx, reqURL, word)
	if err != nil {
		return nil, fmt.Errorf("wordreference: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("wordreference: read body: %w", err)
	}

	return &Page{URL: reqURL, StatusCode: resp.StatusCode, Body: body}, nil
}

// Lookup fetches and parses a word. A page without translations and without
// a challenge marker is a valid empty result, not an error. Failures are
// returned as *domain.LookupError.
func (p *Provider) Lookup(ctx context.Context, item domain.FrequencyItem, from, to string) (domain.LookupResult, error) {
	opts := parser.Options{Monolingual: from == to, BaseURL: p.baseURL}

	page, err := p.Fetch(ctx, item.Word, from, to, 0)
	if err != nil {
		p.log.ErrorContext(ctx, "wordreference request failed", slog.String("word", item.Word), slog.String("error", err.Error()))
		return domain.LookupResult{}, domain.NewLookupError(item.Word, domain.FailureTransport, err)
	}

	if page.StatusCode == http.StatusNotFound && !p.isChallenge(page.Body) {
		p.log.DebugContext(ctx, "wordreference not found", slog.String("word", item.Word))
		return emptyResult(item), nil
	}

	result, err := parser.Parse(bytes.NewReader(page.Body), opts)
	if err != nil {
		return domain.LookupResult{}, domain.NewLookupError(item.Word, domain.FailureTransport, err)
	}

	if !result.HasTranslations() {
		if p.isChallenge(page.Body) {
			p.log.DebugContext(ctx, "wordreference challenge", slog.String("word", item.Word), slog.Int("status", page.StatusCode))
			return domain.LookupResult{}, domain.NewLookupError(item.Word, domain.FailureChallenge, nil)
		}
		if !isSuccess(page.StatusCode) {
			return domain.LookupResult{}, domain.NewLookupError(item.Word, domain.FailureTransport,
				fmt.Errorf("wordreference: unexpected status %d", page.StatusCode))
		}
		p.log.DebugContext(ctx, "wordreference not found", slog.String("word", item.Word))
		return withFrequency(result, item), nil
	}

	for n := 1; n < p.maxPages; n++ {
		blocks, ok := p.extraPage(ctx, item.Word, from, to, n, opts)
		if !ok {
			break
		}
		result.Translations = append(result.Translations, blocks...)
	}

	p.log.DebugContext(ctx, "wordreference response",
		slog.String("word", item.Word),
		slog.Int("status", page.StatusCode),
		slog.Int("blocks", len(result.Translations)),
		slog.Int("audio", len(result.Audio)),
	)

	return withFrequency(result, item), nil
}

// extraPage fetches a follow-up result page. ok is false once a page has no
// translations or cannot be read.
func (p *Provider) extraPage(ctx context.Context, word, from, to string, n int, opts parser.Options) ([]domain.TranslationBlock, bool) {
	page, err := p.Fetch(ctx, word, from, to, n)
	if err != nil {
		p.log.WarnContext(ctx, "wordreference page failed", slog.String("word", word), slog.Int("page", n), slog.String("error", err.Error()))
		return nil, false
	}
	if !isSuccess(page.StatusCode) {
		return nil, false
	}
	extra, err := parser.Parse(bytes.NewReader(page.Body), opts)
	if err != nil || !extra.HasTranslations() {
		return nil, false
	}
	return extra.Translations, true
}

func (p *Provider) isChallenge(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, m := range p.markers {
		if m != "" && bytes.Contains(lower, []byte(m)) {
			return true
		}
	}
	return false
}

func (p *Provider) client() *http.Client {
	if len(p.clients) == 1 {
		return p.clients[0]
	}
	return p.clients[rand.IntN(len(p.clients))]
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, reqURL, word string) (*http.Response, error) {
	resp, err := p.do(ctx, reqURL)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "wordreference retry", slog.String("word", word), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryBackoff):
	}

	return p.do(ctx, reqURL)
}

func (p *Provider) do(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	return p.client().Do(req)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func emptyResult(item domain.FrequencyItem) domain.LookupResult {
	return withFrequency(domain.LookupResult{
		Word:         item.Word,
		Audio:        []string{},
		Translations: []domain.TranslationBlock{},
	}, item)
}

func withFrequency(r domain.LookupResult, item domain.FrequencyItem) domain.LookupResult {
	if r.Word == "" {
		r.Word = item.Word
	}
	if r.Translations == nil {
		r.Translations = []domain.TranslationBlock{}
	}
	freq := item.Frequency
	r.Frequency = &freq
	return r
}
