package wordreference

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/heartmarshall/wrdict/internal/config"
	"github.com/heartmarshall/wrdict/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const tablePage = `<html><body>
<h3 class="headerWord">run</h3>
<span class="pronWR">/rʌn/</span>
<div id="listen_widget"><audio><source src="/audio/run.mp3"></audio></div>
<table class="WRD">
<tr class="wrtopsection"><td>Principal Translations</td></tr>
<tr class="even" id="enes:1"><td class="FrWrd"><strong>run</strong> <em>vi</em></td><td class="ToWrd">correr <em>vi</em></td></tr>
</table>
</body></html>`

const morePage = `<html><body>
<table class="WRD">
<tr class="wrtopsection"><td>Compound Forms</td></tr>
<tr class="odd" id="enes:9"><td class="FrWrd"><strong>run out</strong> <em>vi</em></td><td class="ToWrd">agotarse <em>v prnl</em></td></tr>
</table>
</body></html>`

const emptyPage = `<html><body><p>No translation found.</p></body></html>`

const challengePage = `<html><body><form id="challenge-form"><p>Are you a robot?</p></form></body></html>`

const listPage = `<html><body><div id="article">
<span class="hw">casa</span><span class="rh_pos">nf</span>
<ol><li>edificio para habitar.</li></ol>
</div></body></html>`

func serve(body string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func lookupErr(t *testing.T, err error) *domain.LookupError {
	t.Helper()
	var le *domain.LookupError
	if !errors.As(err, &le) {
		t.Fatalf("error %v is not a *domain.LookupError", err)
	}
	return le
}

func TestProvider_Lookup_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enes/run" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
			t.Errorf("User-Agent = %q, want browser-like", ua)
		}
		serve(tablePage, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	result, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run", Frequency: 77}, "en", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Word != "run" {
		t.Errorf("Word = %q, want %q", result.Word, "run")
	}
	if result.FrequencyValue() != 77 {
		t.Errorf("Frequency = %d, want 77", result.FrequencyValue())
	}
	if result.Pronunciation != "/rʌn/" {
		t.Errorf("Pronunciation = %q", result.Pronunciation)
	}
	if len(result.Audio) != 1 || result.Audio[0] != srv.URL+"/audio/run.mp3" {
		t.Errorf("Audio = %v, want resolved against base URL", result.Audio)
	}
	if len(result.Translations) != 1 || result.Translations[0].Items[0].To != "correr" {
		t.Errorf("Translations = %+v", result.Translations)
	}
}

func TestProvider_Lookup_NormalizesWord(t *testing.T) {
	t.Parallel()

	var gotPath, gotRaw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRaw = r.URL.EscapedPath()
		serve(emptyPage, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	if _, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "caf\u00e9"}, "es", "en"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/esen/cafe\u0301" {
		t.Errorf("path = %q, want NFKD-decomposed word", gotPath)
	}
	if gotRaw != "/esen/cafe%CC%81" {
		t.Errorf("escaped path = %q, want %q", gotRaw, "/esen/cafe%CC%81")
	}
}

func TestProvider_Lookup_NotFoundPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(serve(emptyPage, http.StatusOK))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	result, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "qwxz", Frequency: 3}, "en", "es")
	if err != nil {
		t.Fatalf("expected nil error for page without translations, got %v", err)
	}
	if result.Word != "qwxz" || result.FrequencyValue() != 3 {
		t.Errorf("result = %+v", result)
	}
	if result.Translations == nil || len(result.Translations) != 0 {
		t.Errorf("Translations = %v, want empty", result.Translations)
	}
}

func TestProvider_Lookup_Status404(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(serve("gone", http.StatusNotFound))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	result, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "gone", Frequency: 1}, "en", "es")
	if err != nil {
		t.Fatalf("expected nil error for 404, got %v", err)
	}
	if result.HasTranslations() {
		t.Error("404 result should have no translations")
	}
}

func TestProvider_Lookup_Challenge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{"ok status", http.StatusOK},
		{"forbidden status", http.StatusForbidden},
		{"not found status", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(serve(challengePage, tt.status))
			defer srv.Close()

			p := NewProviderWithURL(srv.URL, newTestLogger())
			_, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run"}, "en", "es")
			if !errors.Is(err, domain.ErrChallenge) {
				t.Fatalf("error = %v, want ErrChallenge", err)
			}
			le := lookupErr(t, err)
			if le.Kind != domain.FailureChallenge || !le.Kind.Retryable() {
				t.Errorf("Kind = %v, want retryable challenge", le.Kind)
			}
		})
	}
}

func TestProvider_Lookup_ForbiddenWithoutMarker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(serve(emptyPage, http.StatusForbidden))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	_, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run"}, "en", "es")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

func TestProvider_Lookup_ServerErrorRetrySuccess(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callCount.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		serve(tablePage, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	result, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run"}, "en", "es")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if !result.HasTranslations() {
		t.Error("expected translations after retry")
	}
	if got := callCount.Load(); got != 2 {
		t.Errorf("callCount = %d, want 2", got)
	}
}

func TestProvider_Lookup_ServerErrorBothAttemptsFail(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	_, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run"}, "en", "es")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	if le := lookupErr(t, err); le.Word != "run" {
		t.Errorf("Word = %q, want run", le.Word)
	}
	if got := callCount.Load(); got != 2 {
		t.Errorf("callCount = %d, want 2", got)
	}
}

func TestProvider_Lookup_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(serve(tablePage, http.StatusOK))
	url := srv.URL
	srv.Close()

	p := NewProviderWithURL(url, newTestLogger())
	_, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run"}, "en", "es")
	if le := lookupErr(t, err); le.Kind != domain.FailureTransport {
		t.Errorf("Kind = %v, want transport", le.Kind)
	}
}

func TestProvider_Lookup_Pagination(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("start") {
		case "":
			serve(tablePage, http.StatusOK)(w, r)
		case "100":
			serve(morePage, http.StatusOK)(w, r)
		default:
			serve(emptyPage, http.StatusOK)(w, r)
		}
	}))
	defer srv.Close()

	p, err := NewProvider(config.FetchConfig{BaseURL: srv.URL, MaxPages: 5, Timeout: 5 * time.Second}, newTestLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	result, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run"}, "en", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Translations) != 2 {
		t.Fatalf("len(Translations) = %d, want 2", len(result.Translations))
	}
	if result.Translations[1].Title != "Compound Forms" {
		t.Errorf("second block title = %q", result.Translations[1].Title)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3 (stops at first empty page)", got)
	}
}

func TestProvider_Lookup_Monolingual(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eses/casa" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		serve(listPage, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	result, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "casa"}, "es", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Translations) != 1 || result.Translations[0].Items[0].To != "edificio para habitar" {
		t.Errorf("Translations = %+v", result.Translations)
	}
}

func TestProvider_Lookup_ThroughProxy(t *testing.T) {
	t.Parallel()

	var proxied atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Host != "wordreference.invalid" {
			t.Errorf("proxy got host %q", r.URL.Host)
		}
		proxied.Add(1)
		serve(tablePage, http.StatusOK)(w, r)
	}))
	defer proxy.Close()

	p, err := NewProvider(config.FetchConfig{
		BaseURL: "http://wordreference.invalid",
		Timeout: 5 * time.Second,
		Proxies: []string{proxy.URL},
	}, newTestLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	if _, err := p.Lookup(context.Background(), domain.FrequencyItem{Word: "run"}, "en", "es"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proxied.Load() != 1 {
		t.Errorf("proxied = %d, want 1", proxied.Load())
	}
}

func TestProvider_LookupURL(t *testing.T) {
	t.Parallel()

	p := NewProviderWithURL("https://wr.example.com/", newTestLogger())

	tests := []struct {
		word string
		page int
		want string
	}{
		{"run", 0, "https://wr.example.com/enes/run"},
		{"ice cream", 0, "https://wr.example.com/enes/ice%20cream"},
		{"run", 2, "https://wr.example.com/enes/run?start=200"},
	}
	for _, tt := range tests {
		if got := p.LookupURL(tt.word, "en", "es", tt.page); got != tt.want {
			t.Errorf("LookupURL(%q, %d) = %q, want %q", tt.word, tt.page, got, tt.want)
		}
	}
}
