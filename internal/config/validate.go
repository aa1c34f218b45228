package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration
// and fills the derived list fields. Load calls it automatically.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}

	if err := c.Fetch.validate(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if c.Retrieve.ChunkSize <= 0 {
		return fmt.Errorf("retrieve.chunk_size must be > 0 (got %d)", c.Retrieve.ChunkSize)
	}
	if c.Retrieve.RequeueDelay < 0 {
		return fmt.Errorf("retrieve.requeue_delay must be >= 0 (got %s)", c.Retrieve.RequeueDelay)
	}

	if c.Database.Enabled() && c.Database.BatchSize <= 0 {
		return fmt.Errorf("database.batch_size must be > 0 (got %d)", c.Database.BatchSize)
	}

	return nil
}

func (f *FetchConfig) validate() error {
	u, err := url.Parse(f.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL (got %q)", f.BaseURL)
	}
	if f.MaxPages < 1 {
		return fmt.Errorf("max_pages must be >= 1 (got %d)", f.MaxPages)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", f.Timeout)
	}
	if f.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must be >= 0 (got %d)", f.RequestsPerMinute)
	}

	f.ChallengeMarkers = SplitList(f.ChallengeMarkersRaw)
	for i, m := range f.ChallengeMarkers {
		f.ChallengeMarkers[i] = strings.ToLower(m)
	}

	proxies := SplitList(f.ProxiesRaw)
	if f.ProxyListPath != "" {
		fromFile, err := readProxyList(f.ProxyListPath)
		if err != nil {
			return fmt.Errorf("proxy_list_path: %w", err)
		}
		proxies = append(proxies, fromFile...)
	}
	for _, p := range proxies {
		if _, err := url.Parse(p); err != nil {
			return fmt.Errorf("invalid proxy %q: %w", p, err)
		}
	}
	f.Proxies = proxies

	return nil
}

// SplitList splits a comma-separated string, trimming items and dropping
// empty ones. An empty string returns a nil slice.
func SplitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readProxyList reads one proxy URL per line; blank lines and # comments are skipped.
func readProxyList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var proxies []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, scanner.Err()
}
