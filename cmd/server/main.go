package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	"shiftguard/internal/auditchain"
	auditmetrics "shiftguard/internal/auditchain/metrics"
	"shiftguard/internal/auditchain/publisher"
	auditmemory "shiftguard/internal/auditchain/store/memory"
	auditpostgres "shiftguard/internal/auditchain/store/postgres"
	auditredis "shiftguard/internal/auditchain/store/redis"
	"shiftguard/internal/compliance"
	compliancemetrics "shiftguard/internal/compliance/metrics"
	jwttoken "shiftguard/internal/jwt_token"
	"shiftguard/internal/platform/config"
	"shiftguard/internal/platform/httpserver"
	"shiftguard/internal/platform/logger"
	platformmetrics "shiftguard/internal/platform/metrics"
	platformredis "shiftguard/internal/platform/redis"
	httptransport "shiftguard/internal/transport/http"
	"shiftguard/internal/workforce"
	"shiftguard/internal/workforce/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in the internal
// services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// Audit chain store: postgres when configured, redis as the shared
	// fallback, in-memory for local development.
	var chainStore auditchain.Store
	switch {
	case cfg.PostgresDSN != "":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		chainStore = auditpostgres.New(db)
	case cfg.RedisURL != "":
		client, err := platformredis.New(cfg.Redis())
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		chainStore = auditredis.New(client.Client)
	default:
		log.Warn("no durable store configured, audit chains are in-memory")
		chainStore = auditmemory.New()
	}

	exporter, err := publisher.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Error("connect kafka", "error", err)
		os.Exit(1)
	}
	defer exporter.Close()

	auditOpts := []auditchain.ServiceOption{
		auditchain.WithLogger(log),
		auditchain.WithMetrics(auditmetrics.New()),
	}
	if exporter != nil {
		auditOpts = append(auditOpts, auditchain.WithPublisher(exporter))
	}
	audits, err := auditchain.NewService(chainStore, auditchain.NewWriter(), auditOpts...)
	if err != nil {
		log.Error("build audit service", "error", err)
		os.Exit(1)
	}

	validator, err := compliance.NewValidator(loc, compliance.WithGeofenceRadius(cfg.GeofenceRadiusMeters))
	if err != nil {
		log.Error("build validator", "error", err)
		os.Exit(1)
	}

	entries := store.NewInMemoryTimeEntryStore()
	breaks := store.NewInMemoryBreakStore()

	complianceSvc, err := compliance.NewService(entries, breaks, validator,
		compliance.WithServiceLogger(log),
		compliance.WithServiceMetrics(compliancemetrics.New()),
	)
	if err != nil {
		log.Error("build compliance service", "error", err)
		os.Exit(1)
	}

	workforceSvc, err := workforce.NewService(entries, breaks, audits,
		workforce.WithLogger(log),
	)
	if err != nil {
		log.Error("build workforce service", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "shiftguard")
	handler := httptransport.NewHandler(workforceSvc, complianceSvc, audits, log)
	router := httptransport.NewRouter(handler, jwttoken.NewJWTServiceAdapter(jwtService), platformmetrics.New())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting shiftguard", "addr", cfg.Addr, "timezone", cfg.Timezone)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
