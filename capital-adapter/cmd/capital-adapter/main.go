package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/capital-adapter/internal/api"
	"github.com/Checker-Finance/adapters/capital-adapter/internal/bus"
	"github.com/Checker-Finance/adapters/capital-adapter/internal/capital"
	internalsecrets "github.com/Checker-Finance/adapters/capital-adapter/internal/secrets"
	"github.com/Checker-Finance/adapters/capital-adapter/pkg/config"
	"github.com/Checker-Finance/adapters/internal/httpclient"
	"github.com/Checker-Finance/adapters/pkg/logger"
	"github.com/Checker-Finance/adapters/pkg/secrets"
	"github.com/Checker-Finance/adapters/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [capital-adapter]...")

	// --- Credentials ---
	stopCleaner := make(chan struct{})
	creds, credOpts, err := credentialsSource(ctx, cfg, stopCleaner)
	if err != nil {
		logg.Fatalw("failed to set up Capital.com credentials", "error", err)
	}
	logg.Infow("capital credentials configured",
		"source", cfg.CredentialsSource,
		"identifier", creds.Identifier,
		"api_key", utils.MaskSecret(creds.APIKey))

	// --- Capital.com client ---
	transport := httpclient.NewRestyTransport(logger.Named("httpclient"), httpclient.TransportOptions{
		Timeout:            cfg.CapitalRequestTimeout,
		InsecureSkipVerify: cfg.CapitalInsecureSkipVerify,
	})
	clientOpts := append([]capital.Option{capital.WithBaseURL(cfg.CapitalBaseURL)}, credOpts...)
	client := capital.NewClient(logger.Named("capital"), transport, creds, clientOpts...)

	if err := client.Authenticate(ctx); err != nil {
		logg.Warnw("initial Capital.com login failed; POST /api/v1/session to retry", "error", err)
	}

	// --- NATS responder (optional) ---
	var nc *nats.Conn
	var responder *bus.Responder
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.ServiceName))
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		responder = bus.NewResponder(ctx, logger.Named("bus"), nc, client, cfg.NATSSubjectPrefix)
		if err := responder.Start(); err != nil {
			logg.Fatalw("failed to start NATS responder", "error", err)
		}
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	capitalHandler := api.NewCapitalHandler(logger.Named("api"), client)
	api.RegisterRoutes(app, nc, capitalHandler)

	// Start HTTP server
	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[capital-adapter] running",
		"base_url", client.BaseURL(),
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"authenticated", client.IsAuthenticated())

	<-ctx.Done()
	logg.Info("shutting down [capital-adapter]...")

	close(stopCleaner)
	if responder != nil {
		responder.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	client.Invalidate()
}

// credentialsSource returns the static credentials of the env source, or, for
// the AWS source, an option that makes every login resolve the account secret
// through a cache whose cleaner runs until stop closes.
func credentialsSource(ctx context.Context, cfg *config.Config, stop <-chan struct{}) (capital.Credentials, []capital.Option, error) {
	if cfg.CredentialsSource != config.CredentialsSourceAWS {
		return capital.Credentials{
			Identifier: cfg.CapitalIdentifier,
			Password:   cfg.CapitalPassword,
			APIKey:     cfg.CapitalAPIKey,
		}, nil, nil
	}

	awsProvider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
	if err != nil {
		return capital.Credentials{}, nil, fmt.Errorf("create AWS Secrets Manager provider: %w", err)
	}

	cache := secrets.NewCache[capital.Credentials](cfg.CacheTTL)
	go cache.StartCleaner(cfg.CleanupFreq, stop)

	resolver := internalsecrets.NewAWSResolver(logger.L(), cfg.Env, awsProvider, cache)
	logger.L().Info("capital credentials resolved per login from AWS Secrets Manager",
		zap.String("secret", resolver.SecretName(cfg.CapitalAccount)))
	return capital.Credentials{}, []capital.Option{capital.WithCredentialsSource(resolver.ForAccount(cfg.CapitalAccount))}, nil
}
