package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/tribehq/tribemail/internal/attachments"
	"github.com/tribehq/tribemail/internal/blobstore"
	"github.com/tribehq/tribemail/internal/blobstore/localfs"
	"github.com/tribehq/tribemail/internal/config"
	"github.com/tribehq/tribemail/internal/db"
	"github.com/tribehq/tribemail/internal/handlers"
	"github.com/tribehq/tribemail/internal/logger"
	"github.com/tribehq/tribemail/internal/mail"
	"github.com/tribehq/tribemail/internal/notify"
	"github.com/tribehq/tribemail/internal/pipeline"
	"github.com/tribehq/tribemail/internal/server"
	"github.com/tribehq/tribemail/internal/store"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			store.NewAccounts,
			store.NewChildren,
			store.NewMemories,
			store.NewUpdates,
			store.NewRecipients,
			store.NewResponses,
			provideBlobStore,
			provideAttachmentProcessor,
			provideSanitizer,
			provideRedisClient,
			provideNotifyDispatcher,
			provideMemoryHandler,
			provideResponseHandler,
			provideRouter,
			provideVerifier,
			handlers.NewPingHandler,
			handlers.NewInboundWebhookHandler,
			provideServer,
		),
		fx.Invoke(
			runMigrations,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideBlobStore(cfg config.Config) (blobstore.Store, error) {
	provider, err := localfs.New(cfg.Media.DataRoot, cfg.Media.PublicBase)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	return provider, nil
}

func provideAttachmentProcessor(log *slog.Logger, blobs blobstore.Store, cfg config.Config) *attachments.Processor {
	return attachments.NewProcessor(log, blobs, cfg.Inbound.MaxAttachmentBytes)
}

func provideSanitizer(cfg config.Config) *mail.Sanitizer {
	return mail.NewSanitizer(cfg.Inbound.MaxSanitizedLen)
}

func provideRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Notify.RedisAddr})
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return rdb.Close() }})
	return rdb
}

func provideNotifyDispatcher(log *slog.Logger, rdb *redis.Client, cfg config.Config) *notify.Dispatcher {
	var sender notify.Sender
	switch cfg.Notify.Sender {
	case "mailgun":
		sender = notify.NewMailgunSender(cfg.Notify.MailgunDomain, cfg.Notify.MailgunAPIKey, cfg.Notify.ConfirmationFrom)
	case "smtp":
		from := cfg.Notify.ConfirmationFrom + "@" + cfg.Inbound.ReplyDomain
		sender = notify.NewSMTPSender(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort, cfg.Notify.SMTPUser, cfg.Notify.SMTPPassword, from)
	default:
		log.Warn("confirmation sender not configured, confirmations disabled")
	}
	queue := notify.NewDigestQueue(rdb, cfg.Notify.DigestQueue)
	return notify.NewDispatcher(log, sender, queue)
}

func provideMemoryHandler(
	log *slog.Logger,
	accounts *store.Accounts,
	children *store.Children,
	memories *store.Memories,
	processor *attachments.Processor,
	dispatcher *notify.Dispatcher,
	sanitizer *mail.Sanitizer,
	cfg config.Config,
) *pipeline.MemoryHandler {
	return pipeline.NewMemoryHandler(
		log, accounts, children, memories, processor, dispatcher, sanitizer,
		cfg.Inbound.MaxSubjectLen, cfg.Inbound.MaxContentLen,
	)
}

func provideResponseHandler(
	log *slog.Logger,
	updates *store.Updates,
	recipients *store.Recipients,
	responses *store.Responses,
	processor *attachments.Processor,
	dispatcher *notify.Dispatcher,
	sanitizer *mail.Sanitizer,
	cfg config.Config,
) *pipeline.ResponseHandler {
	return pipeline.NewResponseHandler(
		log, updates, recipients, responses, processor, dispatcher, sanitizer,
		cfg.Inbound.MaxContentLen,
	)
}

func provideRouter(log *slog.Logger, memories *pipeline.MemoryHandler, responses *pipeline.ResponseHandler, cfg config.Config) *pipeline.Router {
	return pipeline.NewRouter(log, cfg.Inbound.MemoryAddress(), memories, responses)
}

func provideVerifier(log *slog.Logger, cfg config.Config) *mail.Verifier {
	return mail.NewVerifier(log, cfg.Inbound.WebhookSecret)
}

func provideServer(log *slog.Logger, cfg config.Config, ping *handlers.PingHandler, webhook *handlers.InboundWebhookHandler) *server.Server {
	return server.NewServer(log, cfg.Server.Addr, ping, webhook)
}

func runMigrations(log *slog.Logger, cfg config.Config) error {
	return db.Migrate(log, cfg.Postgres, "file://migrations")
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
