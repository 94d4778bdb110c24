package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"jpxcli/internal/config"
	apperrors "jpxcli/internal/errors"
)

// Fetcher downloads listing files.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header sent with downloads.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// NewFetcher creates a Fetcher bounded by the listing size cap and timeout.
func NewFetcher(cfg config.ListingConfig, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultListingMaxBytes
	}

	f := &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger.With("component", "sources"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the content at location. http and https URLs are
// downloaded; file URLs and plain paths are read from disk.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	start := time.Now()

	u, err := url.Parse(location)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("invalid listing location %q", location), err)
	}

	var data []byte
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err = f.download(ctx, location)
	case "file":
		data, err = f.readFile(u.Path)
	default:
		data, err = f.readFile(location)
	}
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "Listing fetched",
		slog.String("location", location),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)))
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to build listing request", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("failed to download %s", location), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("download of %s failed with status: %d", location, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read listing body", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("listing exceeds %d bytes", f.maxBytes), nil)
	}
	return data, nil
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}
	if info.IsDir() {
		return nil, apperrors.NewStorageError(fmt.Sprintf("%s is a directory", path), nil)
	}
	if info.Size() > f.maxBytes {
		return nil, apperrors.NewStorageError(
			fmt.Sprintf("listing %s exceeds %d bytes", path, f.maxBytes), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}
	return data, nil
}
