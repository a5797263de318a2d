package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatbot"
	"github.com/korylprince/jobmatch-server/events"
	"github.com/korylprince/jobmatch-server/football"
	"github.com/korylprince/jobmatch-server/httpapi"
	"github.com/korylprince/jobmatch-server/jobsearch"
	"github.com/korylprince/jobmatch-server/matching"
	"github.com/korylprince/jobmatch-server/storage"
	"go.uber.org/zap"
)

func main() {
	defer logger.Sync()
	ctx := context.Background()

	dialect, _ := api.ParseDialect(config.SQLDriver)

	db, err := sql.Open(config.SQLDriver, config.SQLDSN)
	if err != nil {
		logger.Fatal("Could not open database", zap.Error(err))
	}

	if config.Migrate {
		if err = api.Migrate(ctx, db, dialect); err != nil {
			logger.Fatal("Could not migrate database", zap.Error(err))
		}
	}

	ai := chatbot.NewAIClient(config.AIEndpoint, config.AIModel, config.AIKey, logger.Named("ai"))

	var archive storage.Archive = storage.NopArchive{}
	if conf := config.R2(); conf.Enabled() {
		a, err := storage.NewR2Archive(ctx, conf)
		if err != nil {
			logger.Fatal("Could not configure resume archive", zap.Error(err))
		}
		archive = a
		logger.Info("Archiving resumes", zap.String("bucket", conf.Bucket))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if config.RabbitMQURL != "" {
		p, err := events.DialAMQP(config.RabbitMQURL)
		if err != nil {
			logger.Fatal("Could not connect to RabbitMQ", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		logger.Info("Publishing application events", zap.String("exchange", events.Exchange))
	}

	s := httpapi.NewMemorySessionStore(time.Minute*time.Duration(config.SessionDuration), logger.Named("session"))

	r := httpapi.NewRouter(logger.Named("http"), s, db, dialect, &httpapi.Services{
		AI:        ai,
		Jobs:      jobsearch.NewClient(config.JSearchEndpoint, config.JSearchKey, jobsearch.NewCache(config.JobCacheBytes, config.JobCacheTTL), logger.Named("jobsearch")),
		Scorer:    matching.NewScorer(ai),
		Football:  football.NewClient(config.FootballEndpoint, config.FootballKey, ai, logger.Named("football")),
		Archive:   archive,
		Publisher: publisher,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Session-Key"}),
	)

	chain := cors(handlers.CompressHandler(http.StripPrefix(config.Prefix, r)))

	logger.Info("Listening", zap.String("addr", config.ListenAddr))
	logger.Error("Server stopped", zap.Error(http.ListenAndServe(config.ListenAddr, chain)))
}
