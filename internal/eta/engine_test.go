package eta

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"homecare/models"
	"homecare/pkg/geo"
)

var testDestination = models.Coordinates{Lat: 37.5665, Lon: 126.9780}

// fakeRouter is a scriptable Router that records call volume, concurrency
// and dispatch timestamps.
type fakeRouter struct {
	mu         sync.Mutex
	dispatches []time.Time

	calls    int64
	inFlight int64
	peak     int64

	delay   time.Duration
	err     error
	seconds func(origin models.Coordinates) int
}

func (f *fakeRouter) DrivingTimeSeconds(ctx context.Context, origin, destination models.Coordinates) (int, error) {
	atomic.AddInt64(&f.calls, 1)
	n := atomic.AddInt64(&f.inFlight, 1)
	for {
		p := atomic.LoadInt64(&f.peak)
		if n <= p || atomic.CompareAndSwapInt64(&f.peak, p, n) {
			break
		}
	}
	f.mu.Lock()
	f.dispatches = append(f.dispatches, time.Now())
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			atomic.AddInt64(&f.inFlight, -1)
			return 0, ctx.Err()
		}
	}
	atomic.AddInt64(&f.inFlight, -1)

	if f.err != nil {
		return 0, f.err
	}
	if f.seconds != nil {
		return f.seconds(origin), nil
	}
	return 300, nil
}

func newTestEngine(router Router, ttl time.Duration, limit int, spacing time.Duration) *Engine {
	cache := NewCache(ttl)
	limiter := NewLimiter(limit, spacing)
	logger := log.New(io.Discard, "", 0)
	return NewEngine(router, cache, limiter, Config{CallTimeout: time.Second}, logger)
}

func originAt(lat, lon float64) models.Coordinates {
	return models.Coordinates{Lat: lat, Lon: lon}
}

func TestComputeETAs_CacheIdempotence(t *testing.T) {
	router := &fakeRouter{}
	engine := newTestEngine(router, 10*time.Minute, 3, time.Millisecond)
	origins := []models.Coordinates{originAt(37.4979, 127.0276)}

	first := engine.ComputeETAs(context.Background(), origins, testDestination)
	second := engine.ComputeETAs(context.Background(), origins, testDestination)

	if got := atomic.LoadInt64(&router.calls); got != 1 {
		t.Fatalf("expected exactly 1 live call for a repeated pair, got %d", got)
	}
	if first[0] != second[0] {
		t.Errorf("cached result differs: %+v vs %+v", first[0], second[0])
	}
	if first[0].Source != models.ETASourceAPI {
		t.Errorf("source = %q, want api", first[0].Source)
	}
}

func TestComputeETAs_ConcurrencyBoundAndSpacing(t *testing.T) {
	router := &fakeRouter{delay: 50 * time.Millisecond}
	engine := newTestEngine(router, time.Minute, 3, 200*time.Millisecond)

	origins := make([]models.Coordinates, 8)
	for i := range origins {
		origins[i] = originAt(37.40+float64(i)*0.01, 127.0276)
	}

	engine.ComputeETAs(context.Background(), origins, testDestination)

	if p := atomic.LoadInt64(&router.peak); p > 3 {
		t.Errorf("peak in-flight calls %d exceeds limit 3", p)
	}

	stamps := append([]time.Time(nil), router.dispatches...)
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	for i := 1; i < len(stamps); i++ {
		// Timestamps are taken inside the router, slightly after the gate
		// releases, so allow a small scheduling skew below 200ms.
		if gap := stamps[i].Sub(stamps[i-1]); gap < 180*time.Millisecond {
			t.Errorf("dispatch %d only %v after previous; want >= 200ms spacing", i, gap)
		}
	}
}

func TestComputeETAs_FallbackOnFailure(t *testing.T) {
	router := &fakeRouter{err: errors.New("503 service unavailable")}
	engine := newTestEngine(router, 10*time.Minute, 3, time.Millisecond)
	origin := originAt(37.4979, 127.0276)

	results := engine.ComputeETAs(context.Background(), []models.Coordinates{origin}, testDestination)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Source != models.ETASourceFallback {
		t.Fatalf("source = %q, want fallback", results[0].Source)
	}

	wantSeconds := int(geo.DistanceKm(origin, testDestination) / 30.0 * 3600)
	if results[0].Seconds != wantSeconds {
		t.Errorf("fallback ETA = %ds, want %ds from straight-line distance", results[0].Seconds, wantSeconds)
	}

	// The fallback is cached too: the pair must not be retried per request
	// within the TTL window.
	engine.ComputeETAs(context.Background(), []models.Coordinates{origin}, testDestination)
	if got := atomic.LoadInt64(&router.calls); got != 1 {
		t.Errorf("failed pair retried, %d live calls", got)
	}
}

func TestComputeETAs_FallbackFloor(t *testing.T) {
	router := &fakeRouter{err: errors.New("down")}
	engine := newTestEngine(router, time.Minute, 3, time.Millisecond)

	// A near-zero distance still yields the minimum fallback ETA.
	near := originAt(37.56651, 126.97801)
	results := engine.ComputeETAs(context.Background(), []models.Coordinates{near}, testDestination)
	if results[0].Seconds != 60 {
		t.Errorf("fallback floor = %ds, want 60s", results[0].Seconds)
	}
}

func TestComputeETAs_SingleLiveCallPerKey(t *testing.T) {
	router := &fakeRouter{delay: 80 * time.Millisecond}
	engine := newTestEngine(router, time.Minute, 3, time.Millisecond)
	origin := originAt(37.4979, 127.0276)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := engine.ComputeETAs(context.Background(), []models.Coordinates{origin}, testDestination)
			if res[0].Seconds != 300 || res[0].Source != models.ETASourceAPI {
				t.Errorf("unexpected result %+v", res[0])
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&router.calls); got != 1 {
		t.Fatalf("concurrent requests for one uncached pair made %d live calls, want 1", got)
	}
}

func TestComputeETAs_PreservesOriginOrder(t *testing.T) {
	// Completion order is scrambled by giving nearer origins longer delays;
	// results must still line up with the input by index.
	router := &fakeRouter{
		delay:   10 * time.Millisecond,
		seconds: func(o models.Coordinates) int { return int(o.Lat * 100) },
	}
	engine := newTestEngine(router, time.Minute, 3, time.Millisecond)

	origins := []models.Coordinates{
		originAt(37.0, 127.0),
		originAt(36.0, 127.0),
		originAt(38.0, 127.0),
		originAt(35.0, 127.0),
	}
	results := engine.ComputeETAs(context.Background(), origins, testDestination)

	for i, o := range origins {
		want := int(o.Lat * 100)
		if results[i].Seconds != want {
			t.Errorf("result[%d] = %ds, want %ds (origin %v)", i, results[i].Seconds, want, o)
		}
	}
}

func TestComputeETAs_CancelledRequestDoesNotPoisonCache(t *testing.T) {
	router := &fakeRouter{delay: 200 * time.Millisecond}
	cache := NewCache(time.Minute)
	limiter := NewLimiter(3, time.Millisecond)
	engine := NewEngine(router, cache, limiter, Config{CallTimeout: time.Second}, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	origin := originAt(37.4979, 127.0276)
	results := engine.ComputeETAs(ctx, []models.Coordinates{origin}, testDestination)

	if results[0].Source != models.ETASourceFallback {
		t.Fatalf("cancelled call resolved to %q, want fallback", results[0].Source)
	}
	if cache.Len() != 0 {
		t.Fatalf("cancelled request wrote %d cache entries; the shared cache must stay clean", cache.Len())
	}
}
