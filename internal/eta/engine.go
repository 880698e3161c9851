// Package eta estimates travel time from caregiver locations to a service
// location through an unreliable external routing API. Results are cached,
// outbound calls are concurrency-limited and deduplicated per coordinate
// pair, and every failure resolves to a deterministic distance-based
// fallback, so the engine never fails a matching request.
package eta

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"homecare/models"
	"homecare/pkg/geo"
)

// Router is the outbound routing collaborator. pkg/routing.Client implements
// it; tests substitute fakes.
type Router interface {
	DrivingTimeSeconds(ctx context.Context, origin, destination models.Coordinates) (int, error)
}

// Result is one travel-time estimate, tagged with where it came from.
type Result struct {
	Seconds int
	Source  models.ETASource
}

type Config struct {
	CallTimeout       time.Duration // per outbound call
	FallbackSpeedKmh  float64       // assumed average speed for the fallback estimate
	MinFallbackETASec int           // floor for fallback estimates
}

func (c Config) withDefaults() Config {
	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}
	if c.FallbackSpeedKmh <= 0 {
		c.FallbackSpeedKmh = 30.0
	}
	if c.MinFallbackETASec <= 0 {
		c.MinFallbackETASec = 60
	}
	return c
}

// Engine computes batched ETAs. The cache and limiter are shared across all
// requests served by this engine; the singleflight group guarantees at most
// one outstanding live call per distinct coordinate-pair key.
type Engine struct {
	router  Router
	cache   *Cache
	limiter *Limiter
	cfg     Config
	group   singleflight.Group
	logger  *log.Logger
}

func NewEngine(router Router, cache *Cache, limiter *Limiter, cfg Config, logger *log.Logger) *Engine {
	return &Engine{
		router:  router,
		cache:   cache,
		limiter: limiter,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// ComputeETAs returns one Result per origin, in input order. Cache hits are
// served immediately; misses go through the limiter and the live router, and
// any failure produces a fallback estimate instead of an error.
func (e *Engine) ComputeETAs(ctx context.Context, origins []models.Coordinates, destination models.Coordinates) []Result {
	results := make([]Result, len(origins))

	var wg sync.WaitGroup
	for i, origin := range origins {
		key := Key(origin, destination)
		if entry, ok := e.cache.Get(key); ok {
			results[i] = Result{Seconds: entry.Seconds, Source: entry.Source}
			continue
		}

		wg.Add(1)
		go func(i int, origin models.Coordinates, key string) {
			defer wg.Done()
			results[i] = e.resolve(ctx, key, origin, destination)
		}(i, origin, key)
	}
	wg.Wait()

	return results
}

// resolve collapses concurrent callers for the same key onto one live call;
// later callers wait for the first call's result (or its fallback).
func (e *Engine) resolve(ctx context.Context, key string, origin, destination models.Coordinates) Result {
	v, _, _ := e.group.Do(key, func() (any, error) {
		// A sibling may have populated the cache while this caller queued.
		if entry, ok := e.cache.Get(key); ok {
			return Result{Seconds: entry.Seconds, Source: entry.Source}, nil
		}
		return e.liveCall(ctx, key, origin, destination), nil
	})
	return v.(Result)
}

func (e *Engine) liveCall(ctx context.Context, key string, origin, destination models.Coordinates) Result {
	if err := e.limiter.Acquire(ctx); err != nil {
		// Request cancelled while queued: fall back, but leave the shared
		// cache alone so other requests still get a live attempt.
		return e.fallback(origin, destination)
	}
	defer e.limiter.Release()

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	seconds, err := e.router.DrivingTimeSeconds(callCtx, origin, destination)
	if err != nil {
		res := e.fallback(origin, destination)
		if ctx.Err() == nil {
			// Routing-side failure: cache the fallback so the pair is not
			// retried on every request within the TTL window. A cancelled
			// parent context must not write through to the shared cache.
			e.cache.Put(key, res.Seconds, res.Source)
			e.logger.Printf("routing failed for %s, cached fallback %ds: %v", key, res.Seconds, err)
		}
		return res
	}

	e.cache.Put(key, seconds, models.ETASourceAPI)
	return Result{Seconds: seconds, Source: models.ETASourceAPI}
}

// fallback estimates travel time from straight-line distance at the
// configured average speed.
func (e *Engine) fallback(origin, destination models.Coordinates) Result {
	distanceKm := geo.DistanceKm(origin, destination)
	seconds := int(distanceKm / e.cfg.FallbackSpeedKmh * 3600)
	if seconds < e.cfg.MinFallbackETASec {
		seconds = e.cfg.MinFallbackETASec
	}
	return Result{Seconds: seconds, Source: models.ETASourceFallback}
}
