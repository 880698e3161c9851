package main

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"homecare/internal/config"
	"homecare/internal/eta"
	"homecare/internal/events"
	"homecare/internal/gate"
	"homecare/internal/llm"
	"homecare/internal/match"
	"homecare/internal/storage"
	"homecare/models"
	"homecare/pkg/geocode"
	"homecare/pkg/graceful"
	"homecare/pkg/logger"
	"homecare/pkg/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	mainLog := logger.New("matcher")
	ctx, stop := graceful.Context(context.Background())
	defer stop()

	router := routing.NewClient(cfg.RoutingKeyID, cfg.RoutingKey, cfg.CallTimeout)
	engine := eta.NewEngine(
		router,
		eta.NewCache(cfg.CacheTTL),
		eta.NewLimiter(cfg.MaxInFlight, cfg.DispatchSpacing),
		eta.Config{
			CallTimeout:       cfg.CallTimeout,
			FallbackSpeedKmh:  cfg.FallbackSpeedKmh,
			MinFallbackETASec: cfg.MinFallbackETASec,
		},
		logger.New("eta"),
	)
	pipeline := match.NewPipeline(
		gate.New(cfg.GatePermissive),
		engine,
		match.Config{RadiusKm: cfg.RadiusKm, TopK: cfg.TopK},
		logger.New("pipeline"),
	)

	extractor := llm.NewExtractor(cfg.LLMEndpoint, cfg.LLMModel, cfg.LLMAPIKey, 20*time.Second)
	geocoder := geocode.NewClient(cfg.GeocodeBaseURL, 10*time.Second)

	archive, err := storage.NewArchive(
		cfg.ArchiveEndpoint, cfg.ArchiveAccessKey, cfg.ArchiveSecretKey,
		cfg.ArchiveUseSSL, cfg.ArchiveBucket, logger.New("archive"),
	)
	if err != nil {
		log.Fatalf("connect archive storage: %v", err)
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		log.Fatalf("prepare archive bucket: %v", err)
	}

	consumer := events.NewConsumer(cfg.KafkaBroker, cfg.RequestTopic, cfg.GroupID, logger.New("consumer"))
	publisher := events.NewPublisher(cfg.KafkaBroker, cfg.ResultTopic, logger.New("publisher"))

	consumer.Start(ctx)
	mainLog.Printf("matcher running, consuming %s", cfg.RequestTopic)

	for msg := range consumer.Messages() {
		req, err := events.DecodeRequest(msg.Value)
		if err != nil {
			mainLog.Printf("dropping malformed request: %v", err)
			commit(ctx, consumer, msg, mainLog)
			continue
		}

		// A replayed request that was already archived is republished as-is.
		if prev, err := archive.LoadResult(ctx, req.RequestID); err == nil {
			mainLog.Printf("request %s already processed, republishing archived result", req.RequestID)
			if err := publisher.PublishResult(ctx, *prev); err != nil {
				mainLog.Printf("republish %s: %v", req.RequestID, err)
				continue
			}
			commit(ctx, consumer, msg, mainLog)
			continue
		}

		prepareRequest(ctx, &req, geocoder, extractor, mainLog)

		result, err := pipeline.Rank(ctx, req)
		if err != nil {
			mainLog.Printf("request %s failed: %v", req.RequestID, err)
			commit(ctx, consumer, msg, mainLog)
			continue
		}

		if err := publisher.PublishResult(ctx, result); err != nil {
			// Leave the offset uncommitted so the request is retried.
			mainLog.Printf("publish %s: %v", req.RequestID, err)
			continue
		}
		if err := archive.StoreResult(ctx, result); err != nil {
			mainLog.Printf("archive %s: %v", req.RequestID, err)
		}
		commit(ctx, consumer, msg, mainLog)
	}

	consumer.Stop()
	if err := publisher.Close(); err != nil {
		mainLog.Printf("close publisher: %v", err)
	}
	mainLog.Println("matcher exiting")
}

// prepareRequest fills in what the upstream payload left out: coordinates
// resolved from the address, and structured preferences extracted from
// free-text notes. Failures are logged and left for the pipeline to handle.
func prepareRequest(ctx context.Context, req *models.MatchRequest, geocoder *geocode.Client, extractor *llm.Extractor, mainLog *log.Logger) {
	if req.Location.Coordinates == (models.Coordinates{}) && req.Location.RoadAddress != "" {
		loc, err := geocoder.Resolve(ctx, req.Location.RoadAddress)
		if err != nil {
			mainLog.Printf("request %s: geocode %q: %v", req.RequestID, req.Location.RoadAddress, err)
		} else {
			req.Location = loc
		}
	}

	for i := range req.Candidates {
		c := &req.Candidates[i]
		if c.Preference != nil || c.PreferenceText == "" {
			continue
		}
		pref, err := extractor.Extract(ctx, c.PreferenceText)
		if err != nil {
			// The candidate stays without structured data and the
			// preference gate decides what that means.
			mainLog.Printf("request %s: extract preference for %s: %v", req.RequestID, c.ID, err)
			continue
		}
		c.Preference = pref
	}
}

func commit(ctx context.Context, consumer *events.Consumer, msg kafka.Message, mainLog *log.Logger) {
	if err := consumer.CommitOffset(ctx, msg); err != nil {
		mainLog.Printf("commit offset: %v", err)
	}
}
