// Package source loads PNG bytes from local paths or remote URLs and writes
// results back out.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danmuck/pngctl/internal/png"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnsupportedScheme = errors.New("source: unsupported url scheme")
	ErrFetchStatus       = errors.New("source: unexpected fetch status")
	ErrNoOutputPath      = errors.New("source: no output path for remote input")
)

// Options configures fetching and writing.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Limits    png.Limits
	FileMode  os.FileMode
	Client    *http.Client
}

func DefaultOptions() Options {
	return Options{
		Timeout:   30 * time.Second,
		UserAgent: "pngctl/0.1",
		Limits:    png.DefaultLimits(),
		FileMode:  0o644,
	}
}

// Input is a loaded PNG with its origin. Path is empty for remote inputs.
type Input struct {
	Png  *png.Png
	Path string
	URL  string
	Size int
}

// Load reads ref as a URL when it has an http or https scheme, otherwise as a
// local path, and parses the bytes.
func Load(ctx context.Context, ref string, opts Options) (Input, error) {
	ref = strings.TrimSpace(ref)
	if isURL(ref) {
		return loadURL(ctx, ref, opts)
	}
	return loadFile(ref, opts)
}

func isURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return true
}

func loadFile(path string, opts Options) (Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return Input{}, fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	b, err := png.ReadAll(f, opts.Limits)
	if err != nil {
		return Input{}, fmt.Errorf("source: read %s: %w", path, err)
	}
	p, err := png.Parse(b)
	if err != nil {
		return Input{}, fmt.Errorf("source: %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(b)).Int("chunks", p.Len()).Msg("loaded png")
	return Input{Png: p, Path: path, Size: len(b)}, nil
}

func loadURL(ctx context.Context, raw string, opts Options) (Input, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Input{}, fmt.Errorf("source: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Input{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Input{}, err
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Input{}, fmt.Errorf("source: fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Input{}, fmt.Errorf("%w: %s returned %d", ErrFetchStatus, u.Redacted(), resp.StatusCode)
	}

	b, err := png.ReadAll(resp.Body, opts.Limits)
	if err != nil {
		return Input{}, fmt.Errorf("source: read %s: %w", u.Redacted(), err)
	}
	p, err := png.Parse(b)
	if err != nil {
		return Input{}, fmt.Errorf("source: %s: %w", u.Redacted(), err)
	}
	log.Debug().Str("url", u.Redacted()).Int("bytes", len(b)).Int("chunks", p.Len()).Msg("fetched png")
	return Input{Png: p, URL: u.String(), Size: len(b)}, nil
}

// OutputPath picks the destination: explicit wins, else the input's own
// path. Remote inputs without an explicit output have nowhere to go.
func OutputPath(in Input, explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		return p, nil
	}
	if in.Path != "" {
		return in.Path, nil
	}
	return "", ErrNoOutputPath
}

// Store writes p to path through a temp file in the same directory so a
// failed write never truncates an existing image.
func Store(path string, p *png.Png, opts Options) error {
	mode := opts.FileMode
	if mode == 0 {
		mode = 0o644
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pngctl-*")
	if err != nil {
		return fmt.Errorf("source: create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := p.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("source: write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("source: chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("source: close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("source: rename %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", p.Size()).Msg("stored png")
	return nil
}
