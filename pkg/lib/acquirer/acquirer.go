// Package acquirer downloads missing tool binaries into the per-platform cache.
package acquirer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/platform"
)

const (
	DefaultTimeout = 2 * time.Minute

	// Only one redirect hop is followed; a second redirect is an error.
	maxRedirects = 1
)

// Config describes where binaries are downloaded from and stored.
type Config struct {
	PrimaryBase  string
	FallbackBase string
	CacheRoot    string
	// Timeout bounds the whole transfer of one tool, fallback attempt
	// included. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Result is the outcome of acquiring one tool.
type Result struct {
	Tool    string
	Path    string
	Skipped bool
	Err     error
}

// Acquirer streams tool binaries from a download base into the cache.
type Acquirer struct {
	config   Config
	platform platform.Platform
	client   *http.Client
	log      logr.Logger
}

// New creates an Acquirer for the current platform.
func New(config Config, log logr.Logger) *Acquirer {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Acquirer{
		config:   config,
		platform: platform.Current(),
		client: &http.Client{
			// Redirects are followed by hand so the hop count can be enforced.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log.WithName("acquirer"),
	}
}

// Acquire fetches every tool in tools that is not already present in the
// cache. Tools are processed in order; one failure does not stop the others.
func (a *Acquirer) Acquire(ctx context.Context, tools []string, progress lib.ProgressFunc) []Result {
	results := make([]Result, 0, len(tools))
	for _, tool := range tools {
		path, skipped, err := a.acquire(ctx, tool, progress)
		results = append(results, Result{Tool: tool, Path: path, Skipped: skipped, Err: err})
	}
	return results
}

// DownloadURL returns <base>/<platform>/<tool>[.exe].
func (a *Acquirer) DownloadURL(base, tool string) (string, error) {
	key, err := a.platform.Key()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(base, "/") + "/" + key + "/" + a.platform.ExecutableName(tool), nil
}

func (a *Acquirer) acquire(ctx context.Context, tool string, progress lib.ProgressFunc) (string, bool, error) {
	const op = "acquire"

	dest, err := a.platform.CachedBinaryPath(a.config.CacheRoot, tool)
	if err != nil {
		return "", false, lib.NewError(lib.CategoryBinary, op, "unsupported platform", err)
	}

	if platform.IsExecutable(dest) {
		a.log.V(1).Info("using cached binary", "tool", tool, "path", dest)
		return dest, true, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", false, lib.NewError(lib.CategorySystem, op, "could not create cache directory", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var attemptErrs []error
	downloaded := false
	for _, base := range a.bases() {
		downloadURL, err := a.DownloadURL(base, tool)
		if err != nil {
			return "", false, lib.NewError(lib.CategoryBinary, op, "unsupported platform", err)
		}

		a.log.Info("downloading binary", "tool", tool, "url", downloadURL)
		err = a.download(ctx, tool, downloadURL, dest, progress)
		if err == nil {
			downloaded = true
			break
		}
		a.log.Error(err, "download failed", "tool", tool, "url", downloadURL)
		attemptErrs = append(attemptErrs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if !downloaded {
		return "", false, lib.NewError(lib.CategoryBinary, op, fmt.Sprintf("could not download %s", tool), errors.Join(attemptErrs...))
	}

	if err := platform.MakeExecutable(dest); err != nil {
		_ = os.Remove(dest)
		return "", false, lib.NewError(lib.CategoryBinary, op, "could not mark binary executable", err)
	}

	a.log.Info("download complete", "tool", tool, "path", dest)
	return dest, false, nil
}

func (a *Acquirer) bases() []string {
	bases := []string{a.config.PrimaryBase}
	if a.config.FallbackBase != "" && a.config.FallbackBase != a.config.PrimaryBase {
		bases = append(bases, a.config.FallbackBase)
	}
	return bases
}

// download streams one URL into dest through a temporary file in the same
// directory. The temporary file is removed on any failure.
func (a *Acquirer) download(ctx context.Context, tool, rawURL, dest string, progress lib.ProgressFunc) error {
	resp, err := a.get(ctx, rawURL, maxRedirects)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	var w io.Writer = tmp
	if progress != nil && resp.ContentLength > 0 {
		w = &progressWriter{w: tmp, tool: tool, total: resp.ContentLength, report: progress}
	}

	_, copyErr := io.Copy(w, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		if ctx.Err() != nil {
			return fmt.Errorf("transfer aborted: %w", ctx.Err())
		}
		return fmt.Errorf("write binary: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename binary: %w", err)
	}
	return nil
}

// get issues a GET and follows at most redirectsLeft redirects.
func (a *Acquirer) get(ctx context.Context, rawURL string, redirectsLeft int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	if isRedirect(resp.StatusCode) {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if redirectsLeft == 0 {
			return nil, fmt.Errorf("too many redirects: %s redirected again to %q", rawURL, location)
		}
		if location == "" {
			return nil, fmt.Errorf("redirect from %s without a Location header", rawURL)
		}
		next, err := resolveLocation(rawURL, location)
		if err != nil {
			return nil, err
		}
		a.log.V(1).Info("following redirect", "from", rawURL, "to", next)
		return a.get(ctx, next, redirectsLeft-1)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}
	return resp, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", base, err)
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse redirect location %q: %w", location, err)
	}
	return b.ResolveReference(l).String(), nil
}

type progressWriter struct {
	w          io.Writer
	tool       string
	downloaded int64
	total      int64
	report     lib.ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.downloaded += int64(n)
	p.report(lib.Progress{
		Tool:       p.tool,
		Downloaded: p.downloaded,
		Total:      p.total,
		Percentage: float64(p.downloaded) * 100 / float64(p.total),
	})
	return n, err
}
