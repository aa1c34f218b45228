package frequency

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// DefaultSourceURL is the hermitdave FrequencyWords list for a language code.
func DefaultSourceURL(lang string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/hermitdave/FrequencyWords/master/content/2018/%s/%s_full.txt", lang, lang)
}

// Load reads the frequency list for lang. An empty source selects the default
// remote list; an http(s) URL is fetched with client; anything else is a
// local file path.
func Load(ctx context.Context, client *http.Client, lang, source string) ([]domain.FrequencyItem, error) {
	if source == "" {
		source = DefaultSourceURL(lang)
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return loadRemote(ctx, client, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("frequency: open %s: %w", source, err)
	}
	defer f.Close()

	return Parse(f)
}

func loadRemote(ctx context.Context, client *http.Client, source string) ([]domain.FrequencyItem, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("frequency: create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("frequency: fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("frequency: fetch %s: unexpected status %d", source, resp.StatusCode)
	}

	return Parse(resp.Body)
}
