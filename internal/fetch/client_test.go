package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	session := NewSession("test-agent")
	t.Cleanup(session.Close)
	return NewClient(session, opts, zap.NewNop())
}

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		require.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html>hello</html>")
	}))
	defer srv.Close()

	client := newTestClient(t, Options{})
	body, ok := client.Fetch(context.Background(), srv.URL+"/page")
	require.True(t, ok)
	require.Equal(t, "<html>hello</html>", body)
}

func TestFetchNon2xxIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, Options{})
	_, ok := client.Fetch(context.Background(), srv.URL+"/page")
	require.False(t, ok)
}

func TestFetchRespectsRobotsAndCachesFile(t *testing.T) {
	var mu sync.Mutex
	robotsFetches := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			mu.Lock()
			robotsFetches++
			mu.Unlock()
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	client := newTestClient(t, Options{})
	ctx := context.Background()

	_, ok := client.Fetch(ctx, srv.URL+"/private/data")
	require.False(t, ok, "disallowed path must not be fetched")

	_, ok = client.Fetch(ctx, srv.URL+"/public")
	require.True(t, ok)

	_, ok = client.Fetch(ctx, srv.URL+"/private/more")
	require.False(t, ok)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, robotsFetches, "robots.txt must be fetched once per host per session")
}

func TestFetchMissingRobotsAllowsEverything(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	client := newTestClient(t, Options{})
	_, ok := client.Fetch(context.Background(), srv.URL+"/anything")
	require.True(t, ok)
}

func TestFetchSpacesRequestsPerHost(t *testing.T) {
	var mu sync.Mutex
	var pageHits []time.Time

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		pageHits = append(pageHits, time.Now())
		mu.Unlock()
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	const delay = 150 * time.Millisecond
	client := newTestClient(t, Options{MinDelay: delay})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, ok := client.Fetch(ctx, fmt.Sprintf("%s/page/%d", srv.URL, i))
		require.True(t, ok)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, pageHits, 3)
	for i := 1; i < len(pageHits); i++ {
		gap := pageHits[i].Sub(pageHits[i-1])
		// Generous margin: the limiter guarantees the spacing, the
		// scheduler only adds to it.
		require.GreaterOrEqual(t, gap, delay-20*time.Millisecond,
			"requests %d and %d under-spaced", i-1, i)
	}
}

func TestFetchDoesNotSpaceAcrossHosts(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "ok")
	})
	srvA := httptest.NewServer(handler)
	defer srvA.Close()
	srvB := httptest.NewServer(handler)
	defer srvB.Close()

	client := newTestClient(t, Options{MinDelay: 2 * time.Second})
	ctx := context.Background()

	start := time.Now()
	_, ok := client.Fetch(ctx, srvA.URL+"/page")
	require.True(t, ok)
	_, ok = client.Fetch(ctx, srvB.URL+"/page")
	require.True(t, ok)
	require.Less(t, time.Since(start), time.Second,
		"distinct hosts must not wait on each other")
}

func TestFetchRejectsUnusableURL(t *testing.T) {
	client := newTestClient(t, Options{})
	_, ok := client.Fetch(context.Background(), "not a url")
	require.False(t, ok)
	_, ok = client.Fetch(context.Background(), "")
	require.False(t, ok)
}
