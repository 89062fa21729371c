// Package data downloads daily OHLCV datasets from stooq.com.
package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBase = "https://stooq.com/q/d/l/"

// Downloader fetches daily CSV files from stooq and caches them on disk.
// Stooq throttles aggressively, so all requests go through a shared rate
// limiter; batch pulls across many symbols stay polite automatically.
type Downloader struct {
	Base    string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewDownloader builds a Downloader with the production base URL and a
// conservative request rate (1 req/s, burst 2).
func NewDownloader() *Downloader {
	return &Downloader{
		Base:    defaultBase,
		Client:  &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// URL returns the stooq daily CSV endpoint for symbol (e.g. "aapl.us").
func (d *Downloader) URL(symbol string) string {
	base := d.Base
	if base == "" {
		base = defaultBase
	}
	return fmt.Sprintf("%s?s=%s&i=d", base, strings.ToLower(strings.TrimSpace(symbol)))
}

// CachePath returns where Download stores the CSV for symbol.
func CachePath(cacheDir, symbol string) string {
	name := strings.ToLower(strings.TrimSpace(symbol))
	name = strings.ReplaceAll(name, "/", "_")
	return filepath.Join(cacheDir, name+"_stooq_d.csv")
}

// Download fetches the daily CSV for symbol into cacheDir and returns the
// local path. An existing cached file is reused unless force is set.
func (d *Downloader) Download(ctx context.Context, symbol, cacheDir string, force bool) (string, error) {
	if symbol == "" {
		return "", fmt.Errorf("stooq: symbol required")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("stooq: cache dir: %w", err)
	}

	out := CachePath(cacheDir, symbol)
	if !force {
		if _, err := os.Stat(out); err == nil {
			return out, nil
		}
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL(symbol), nil)
	if err != nil {
		return "", err
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stooq: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stooq: fetch %s: status %s", symbol, resp.Status)
	}

	// Write to a temp file first so a failed download never clobbers a
	// good cached copy.
	tmp, err := os.CreateTemp(cacheDir, ".stooq-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("stooq: save %s: %w", symbol, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return "", err
	}
	return out, nil
}
