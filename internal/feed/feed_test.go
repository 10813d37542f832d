package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/session"
)

// #region helpers
func intp(v int) *int { return &v }

func payload(sess int64, a, b, c int) Payload {
	return Payload{SessionId: sess, FirstDice: a, SecondDice: b, ThirdDice: c, DiceSum: a + b + c}
}

// upstream serves the current batch newest first, like the real endpoint.
type upstream struct {
	mu    sync.Mutex
	batch []Payload
}

func (u *upstream) set(ps []Payload) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.batch = make([]Payload, len(ps))
	for i, p := range ps {
		u.batch[len(ps)-1-i] = p
	}
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u.batch)
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Interval = 5 * time.Millisecond
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = time.Second
	return cfg
}

func series(start int64, n int) []Payload {
	out := make([]Payload, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = payload(start+int64(i), 6, 5, 4)
		} else {
			out[i] = payload(start+int64(i), 1, 2, 3)
		}
	}
	return out
}

// #endregion helpers

// #region normalize
func TestNormalize(t *testing.T) {
	in := []Payload{
		payload(12, 6, 6, 6),
		payload(10, 1, 1, 1),
		{SessionId: 11, FirstDice: 1, SecondDice: 2, ThirdDice: 3, BetSide: intp(0)},
		payload(0, 1, 1, 1), // no session
		{SessionId: 13, FirstDice: 7, SecondDice: 1, ThirdDice: 1},             // bad die
		{SessionId: 14, FirstDice: 1, SecondDice: 1, ThirdDice: 1, DiceSum: 9}, // sum mismatch
		payload(12, 1, 1, 1), // repeated session
	}

	got := Normalize(in)

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(got), got)
	}
	for i, want := range []int64{10, 11, 12} {
		if got[i].Session != want {
			t.Fatalf("record %d: expected session %d, got %d", i, want, got[i].Session)
		}
	}
	if got[0].Category != outcome.Xiu {
		t.Fatalf("total 3 should be Xiu, got %s", got[0].Category)
	}
	if got[1].Category != outcome.Tai || got[1].Total != 6 {
		t.Fatalf("BetSide 0 should force Tai, got %+v", got[1])
	}
	if got[2].Total != 18 {
		t.Fatalf("first occurrence of 12 should win, got %+v", got[2])
	}
}

func TestAfter(t *testing.T) {
	batch := Normalize(series(100, 5))
	if got := After(batch, 102); len(got) != 2 || got[0].Session != 103 {
		t.Fatalf("unexpected tail %+v", got)
	}
	if got := After(batch, 104); len(got) != 0 {
		t.Fatalf("expected nothing newer, got %+v", got)
	}
}

func TestDecode(t *testing.T) {
	ps, err := Decode(strings.NewReader(`[{"SessionId":5,"FirstDice":1,"SecondDice":2,"ThirdDice":3,"DiceSum":6,"BetSide":1}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(ps) != 1 || ps[0].BetSide == nil || *ps[0].BetSide != 1 {
		t.Fatalf("unexpected payloads %+v", ps)
	}
	if _, err := Decode(strings.NewReader(`{"message":"none"}`)); err == nil {
		t.Fatal("expected error for non-array body")
	}
}

// #endregion normalize

// #region fetch
func TestFetchRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		json.NewEncoder(w).Encode(series(1, 2))
	}))
	defer srv.Close()

	ps, err := NewFetcher(testConfig(srv.URL), srv.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(ps) != 2 || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected success on third attempt, got %d payloads after %d hits", len(ps), hits)
	}
}

func TestFetchGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewFetcher(testConfig(srv.URL), nil).Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") || !strings.Contains(err.Error(), "HTTP 502") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFetchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewFetcher(cfg, nil).Fetch(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

// #endregion fetch

// #region poller
func TestPollerSeedsThenPushes(t *testing.T) {
	up := &upstream{}
	up.set(series(1000, 30))
	srv := httptest.NewServer(up)
	defer srv.Close()

	sess := session.New(session.DefaultConfig())
	cfg := testConfig(srv.URL)
	p := NewPoller(cfg, NewFetcher(cfg, nil), sess)
	ctx := context.Background()

	n, err := p.Poll(ctx)
	if err != nil || n != 30 {
		t.Fatalf("first poll: n=%d err=%v", n, err)
	}
	if sess.Len() != 30 || p.LastSession() != 1029 {
		t.Fatalf("expected 30 seeded records up to 1029, got %d / %d", sess.Len(), p.LastSession())
	}

	// Same batch again: nothing new.
	if n, err := p.Poll(ctx); err != nil || n != 0 {
		t.Fatalf("repeat poll: n=%d err=%v", n, err)
	}

	// Upstream window slides forward by three.
	up.set(series(1003, 30))
	n, err = p.Poll(ctx)
	if err != nil || n != 3 {
		t.Fatalf("third poll: n=%d err=%v", n, err)
	}
	if sess.Len() != 33 {
		t.Fatalf("expected 33 records, got %d", sess.Len())
	}
	if st := sess.Stats(); st.TotalPredictions != 3 {
		t.Fatalf("expected 3 resolved predictions, got %+v", st)
	}
}

func TestPollerEmptyBatch(t *testing.T) {
	up := &upstream{}
	up.set([]Payload{{SessionId: 1, FirstDice: 9}})
	srv := httptest.NewServer(up)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	p := NewPoller(cfg, NewFetcher(cfg, nil), session.New(session.DefaultConfig()))
	if _, err := p.Poll(context.Background()); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	up := &upstream{}
	up.set(series(1, 25))
	srv := httptest.NewServer(up)
	defer srv.Close()

	sess := session.New(session.DefaultConfig())
	cfg := testConfig(srv.URL)
	p := NewPoller(cfg, NewFetcher(cfg, nil), sess)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for sess.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	up.set(series(1, 27))
	for sess.Len() < 27 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sess.Len() != 27 {
		t.Fatalf("expected 27 records, got %d", sess.Len())
	}
}

func TestPollerRunStopsOnClosedSession(t *testing.T) {
	up := &upstream{}
	up.set(series(1, 5))
	srv := httptest.NewServer(up)
	defer srv.Close()

	sess := session.New(session.DefaultConfig())
	sess.Close()
	cfg := testConfig(srv.URL)

	err := NewPoller(cfg, NewFetcher(cfg, nil), sess).Run(context.Background())
	if !errors.Is(err, session.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

// #endregion poller
