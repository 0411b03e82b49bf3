package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	server "github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/http_server"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/memory"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/observability"
	redisad "github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/redis"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/suites"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/app"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "dashboard")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// A missing endpoint is not fatal: every page renders the configuration
	// error inline until the env is fixed.
	base, err := shared.ResolveEndpoint(cfg.APIEndpoint, cfg.APIPathPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("api endpoint not configured, pages will show the error")
	} else {
		log.Info().Str("base", base).Msg("suites api endpoint resolved")
	}

	client := suites.New(base, suites.Options{
		Timeout:        cfg.APITimeout,
		CopilotTimeout: cfg.CopilotTimeout,
		RPS:            cfg.APIRPS,
		InsecureTLS:    cfg.InsecureTLS,
		LegacyFormChat: cfg.ChatLegacyForm,
	})

	// session backend: redis when configured, in-process otherwise
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
		cache = rc
	} else {
		log.Info().Msg("no redis configured, sessions held in process memory")
		cache = memory.New()
	}

	sessions := app.NewSessions(cache, cfg.SessionTTL)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:        app.NewQueryService(client, sessions),
		Chat:     app.NewChatService(client, sessions),
		Vector:   app.NewVectorService(client),
		Sessions: sessions,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("dashboard listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
