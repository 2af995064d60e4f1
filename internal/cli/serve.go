package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/chatbot"
	"github.com/iliyamo/envirowatch/internal/config"
	"github.com/iliyamo/envirowatch/internal/handler"
	"github.com/iliyamo/envirowatch/internal/middleware"
	"github.com/iliyamo/envirowatch/internal/repository"
	"github.com/iliyamo/envirowatch/internal/router"
	"github.com/iliyamo/envirowatch/internal/service"
)

const listenFlag = "listen"

var serveFlags = map[string]cobraflags.Flag{
	listenFlag: &cobraflags.StringFlag{
		Name:  listenFlag,
		Value: "",
		Usage: "Listen address, overrides the configured port (e.g. 127.0.0.1:5000)",
	},
}

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serve(parent context.Context) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.close()
	log := rt.log

	ctx, stop := signal.NotifyContext(contextOrBackground(parent), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := rt.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	points := repository.NewPointRepo(db)
	records := repository.NewRecordRepo(db)
	chats := repository.NewChatRepo(db)
	system := repository.NewSystemRepo(db)

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)
	publisher := service.NewRecordPublisher(rt.cfg.AMQPURL, log)
	if !publisher.Enabled() {
		log.Info("AMQP_URL not set, record events will not be published")
	}

	responder := chatbot.NewResponder(points, records, chatbot.WithLogger(log.Named("chatbot")))
	chat := service.NewChatService(chats, responder, log)

	e := router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(rt.cfg, users, log),
		Points:  handler.NewPointHandler(points, records, cache, log),
		Records: handler.NewRecordHandler(records, points, publisher, cache, log),
		Chat:    handler.NewChatHandler(chat, log),
		Admin:   handler.NewAdminHandler(users, points, records, system, cache, log),
	}, router.Options{
		JWTSecret:   rt.cfg.JWTSecret,
		FrontendURL: rt.cfg.FrontendURL,
		Cache:       cache,
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Log:         log,
	})

	addr := serveFlags[listenFlag].GetString()
	if addr == "" {
		addr = ":" + rt.cfg.Port
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
