// Package match orchestrates the candidate-narrowing and ETA-ranking
// pipeline: radius pre-filter, preference gate, batched travel-time
// estimation, and final top-K selection. Candidates only ever leave the
// working set; no stage widens it.
package match

import (
	"context"
	"fmt"
	"log"

	"homecare/internal/eta"
	"homecare/internal/gate"
	"homecare/models"
	"homecare/pkg/geo"
)

// Stage names the pipeline's linear states. A request moves strictly
// forward; any unrecoverable error sends it to Failed.
type Stage string

const (
	StageValidating          Stage = "validating"
	StageRadiusFiltering     Stage = "radius_filtering"
	StagePreferenceFiltering Stage = "preference_filtering"
	StageETAComputing        Stage = "eta_computing"
	StageRanking             Stage = "ranking"
)

type Config struct {
	RadiusKm float64
	TopK     int
}

func (c Config) withDefaults() Config {
	if c.RadiusKm <= 0 {
		c.RadiusKm = geo.DefaultRadiusKm
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	return c
}

// Pipeline runs matching requests. Safe for concurrent use; the only shared
// mutable state lives inside the ETA engine's cache and limiter.
type Pipeline struct {
	gate   *gate.Gate
	engine *eta.Engine
	cfg    Config
	logger *log.Logger
}

func NewPipeline(g *gate.Gate, engine *eta.Engine, cfg Config, logger *log.Logger) *Pipeline {
	return &Pipeline{
		gate:   g,
		engine: engine,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Rank narrows the request's candidates and returns at most TopK of them
// ordered by ETA ascending. Running out of candidates mid-pipeline is a
// normal outcome reported through the result status, not an error; only
// validation failures and internal faults return a non-nil error.
func (p *Pipeline) Rank(ctx context.Context, req models.MatchRequest) (models.MatchResult, error) {
	result := models.MatchResult{RequestID: req.RequestID, Status: models.StatusNoCandidates, Ranked: []models.RankedCandidate{}}

	// Validating
	if err := req.Location.Coordinates.Validate(); err != nil {
		return result, validationError(StageValidating, err)
	}
	for _, c := range req.Candidates {
		if err := c.Location.Validate(); err != nil {
			return result, validationError(StageValidating, fmt.Errorf("candidate %s: %w", c.ID, err))
		}
	}

	center := req.Location.Coordinates

	// RadiusFiltering
	nearby := geo.FilterByRadius(center, req.Candidates, p.cfg.RadiusKm)
	p.logger.Printf("request %s: %d of %d candidates within %.1f km", req.RequestID, len(nearby), len(req.Candidates), p.cfg.RadiusKm)
	if len(nearby) == 0 {
		return result, nil
	}

	// PreferenceFiltering
	qualified := p.gate.Filter(nearby, req)
	p.logger.Printf("request %s: %d of %d candidates passed the preference gate", req.RequestID, len(qualified), len(nearby))
	if len(qualified) == 0 {
		return result, nil
	}

	// ETAComputing
	origins := make([]models.Coordinates, len(qualified))
	for i, c := range qualified {
		origins[i] = c.Location
	}
	etas := p.engine.ComputeETAs(ctx, origins, center)
	if len(etas) != len(qualified) {
		return result, faultError(StageETAComputing,
			fmt.Errorf("eta engine returned %d results for %d origins", len(etas), len(qualified)))
	}

	// Ranking
	rows := make([]models.RankedCandidate, len(qualified))
	for i, c := range qualified {
		rows[i] = models.RankedCandidate{
			CaregiverID: c.ID,
			DistanceKm:  geo.DistanceKm(center, c.Location),
			ETASeconds:  etas[i].Seconds,
			ETASource:   etas[i].Source,
		}
	}

	result.Status = models.StatusMatched
	result.Ranked = Select(rows, p.cfg.TopK)
	return result, nil
}
