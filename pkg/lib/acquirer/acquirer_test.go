package acquirer

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/platform"
)

var payload = bytes.Repeat([]byte("0123456789abcdef"), 8*1024)

func serveBinary(w http.ResponseWriter) {
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func destFor(t *testing.T, cacheRoot, tool string) string {
	t.Helper()
	dest, err := platform.Current().CachedBinaryPath(cacheRoot, tool)
	require.NoError(t, err)
	return dest
}

func requireNoLeftovers(t *testing.T, dest string) {
	t.Helper()
	_, err := os.Stat(dest)
	require.True(t, os.IsNotExist(err), "destination should not exist, stat err=%v", err)
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(dest), ".download-*"))
	require.Empty(t, leftovers)
}

func TestAcquire_StreamsWithProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveBinary(w)
	}))
	defer srv.Close()

	cacheRoot := t.TempDir()
	a := New(Config{PrimaryBase: srv.URL, CacheRoot: cacheRoot}, testr.New(t))

	var reports []lib.Progress
	results := a.Acquire(t.Context(), []string{lib.ToolMirror}, func(p lib.Progress) {
		reports = append(reports, p)
	})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.False(t, results[0].Skipped)
	require.Equal(t, destFor(t, cacheRoot, lib.ToolMirror), results[0].Path)

	data, err := os.ReadFile(results[0].Path)
	require.NoError(t, err)
	require.Equal(t, payload, data)
	require.True(t, platform.IsExecutable(results[0].Path))

	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	require.Equal(t, int64(len(payload)), last.Downloaded)
	require.Equal(t, int64(len(payload)), last.Total)
	require.InDelta(t, 100.0, last.Percentage, 0.001)
	for i := 1; i < len(reports); i++ {
		require.GreaterOrEqual(t, reports[i].Downloaded, reports[i-1].Downloaded)
	}
}

func TestAcquire_SkipsExistingExecutable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		serveBinary(w)
	}))
	defer srv.Close()

	cacheRoot := t.TempDir()
	dest := destFor(t, cacheRoot, lib.ToolBridge)
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("#!/bin/sh\n"), 0o755))

	a := New(Config{PrimaryBase: srv.URL, CacheRoot: cacheRoot}, testr.New(t))
	results := a.Acquire(t.Context(), []string{lib.ToolBridge}, nil)

	require.NoError(t, results[0].Err)
	require.True(t, results[0].Skipped)
	require.Equal(t, dest, results[0].Path)
	require.Zero(t, hits.Load())
}

func TestAcquire_FollowsSingleRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/moved/", func(w http.ResponseWriter, r *http.Request) {
		serveBinary(w)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/moved"+r.URL.Path, http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := New(Config{PrimaryBase: srv.URL, CacheRoot: t.TempDir()}, testr.New(t))
	results := a.Acquire(t.Context(), []string{lib.ToolMirror}, nil)
	require.NoError(t, results[0].Err)
}

func TestAcquire_SecondRedirectIsAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/two/", func(w http.ResponseWriter, r *http.Request) {
		serveBinary(w)
	})
	mux.HandleFunc("/one/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/two/bin", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/one/bin", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cacheRoot := t.TempDir()
	a := New(Config{PrimaryBase: srv.URL, CacheRoot: cacheRoot}, testr.New(t))
	results := a.Acquire(t.Context(), []string{lib.ToolMirror}, nil)

	require.Error(t, results[0].Err)
	require.ErrorContains(t, results[0].Err, "too many redirects")
	require.Equal(t, lib.CategoryBinary, lib.CategoryOf(results[0].Err))
	requireNoLeftovers(t, destFor(t, cacheRoot, lib.ToolMirror))
}

func TestAcquire_RejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cacheRoot := t.TempDir()
	a := New(Config{PrimaryBase: srv.URL, CacheRoot: cacheRoot}, testr.New(t))
	results := a.Acquire(t.Context(), []string{lib.ToolBridge}, nil)

	require.ErrorContains(t, results[0].Err, "HTTP 404")
	requireNoLeftovers(t, destFor(t, cacheRoot, lib.ToolBridge))
}

func TestAcquire_MidTransferFailureLeavesNoPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload[:1024])
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	cacheRoot := t.TempDir()
	a := New(Config{PrimaryBase: srv.URL, CacheRoot: cacheRoot}, testr.New(t))

	var reported int
	results := a.Acquire(t.Context(), []string{lib.ToolMirror}, func(lib.Progress) { reported++ })

	require.Error(t, results[0].Err)
	require.Positive(t, reported, "some bytes should have been streamed before the failure")
	requireNoLeftovers(t, destFor(t, cacheRoot, lib.ToolMirror))
}

func TestAcquire_TimeoutAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload[:16])
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cacheRoot := t.TempDir()
	a := New(Config{PrimaryBase: srv.URL, CacheRoot: cacheRoot, Timeout: 200 * time.Millisecond}, testr.New(t))

	start := time.Now()
	results := a.Acquire(t.Context(), []string{lib.ToolBridge}, nil)

	require.Error(t, results[0].Err)
	require.Less(t, time.Since(start), 3*time.Second)
	requireNoLeftovers(t, destFor(t, cacheRoot, lib.ToolBridge))
}

func TestAcquire_TimeoutCoversFallback(t *testing.T) {
	var hits atomic.Int32
	stall := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	primary := httptest.NewServer(stall)
	defer primary.Close()
	fallback := httptest.NewServer(stall)
	defer fallback.Close()

	const timeout = 500 * time.Millisecond
	cacheRoot := t.TempDir()
	a := New(Config{PrimaryBase: primary.URL, FallbackBase: fallback.URL, CacheRoot: cacheRoot, Timeout: timeout}, testr.New(t))

	start := time.Now()
	results := a.Acquire(t.Context(), []string{lib.ToolMirror}, nil)
	elapsed := time.Since(start)

	require.Error(t, results[0].Err)
	require.Equal(t, lib.CategoryBinary, lib.CategoryOf(results[0].Err))
	require.GreaterOrEqual(t, elapsed, timeout)
	require.Less(t, elapsed, timeout+timeout*4/5)
	require.Equal(t, int32(1), hits.Load(), "fallback must not get a fresh deadline")
	requireNoLeftovers(t, destFor(t, cacheRoot, lib.ToolMirror))
}

func TestAcquire_FallsBackToSecondaryBase(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveBinary(w)
	}))
	defer fallback.Close()

	a := New(Config{PrimaryBase: primary.URL, FallbackBase: fallback.URL, CacheRoot: t.TempDir()}, testr.New(t))
	results := a.Acquire(t.Context(), []string{lib.ToolBridge, lib.ToolMirror}, nil)

	require.Len(t, results, 2)
	for _, res := range results {
		require.NoError(t, res.Err, res.Tool)
		require.FileExists(t, res.Path)
	}
}

func TestDownloadURL(t *testing.T) {
	a := New(Config{PrimaryBase: "https://example.invalid/tools/"}, testr.New(t))
	a.platform = platform.Platform{OS: "windows", Arch: "amd64"}

	got, err := a.DownloadURL(a.config.PrimaryBase, lib.ToolBridge)
	require.NoError(t, err)
	require.Equal(t, "https://example.invalid/tools/windows-x64/adb.exe", got)
}
