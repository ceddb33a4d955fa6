package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lotus/internal/auth"
	"lotus/internal/config"
	"lotus/internal/database"
	"lotus/internal/logging"
	"lotus/internal/pnw"
	"lotus/internal/services"
)

const (
	outboundTimeout = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()
	logger := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	for _, warning := range cfg.Warnings() {
		logger.Warn("Configuration warning: " + warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	cipher, err := auth.NewCipherFromSecrets(cfg.CredentialKey, cfg.SessionSecret)
	if err != nil {
		return err
	}

	// Initialize services
	httpClient := &http.Client{Timeout: outboundTimeout}
	sessionManager := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionMaxAge, cfg.SessionSecure)
	accountService := auth.NewAccountService(db, cipher)
	discordClient := auth.NewDiscordClient(auth.DiscordConfig{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURI:  cfg.DiscordRedirectURI,
		APIBase:      cfg.DiscordAPIBase,
	}, httpClient)
	gameClient := pnw.NewClient(cfg.PnWAPIURL, cfg.PnWAPIKey, httpClient)

	app := &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		sessions:      sessionManager,
		accounts:      accountService,
		discord:       discordClient,
		alliance:      services.NewAllianceService(gameClient, cfg.AllianceID),
		members:       services.NewMemberService(gameClient, accountService, cfg.AllianceID),
		bank:          services.NewBankService(gameClient, accountService, accountService),
		announcements: services.NewAnnouncementService(db, accountService),
	}

	// Load templates
	templates, err := loadTemplates(templateFS(cfg.WebDir))
	if err != nil {
		return err
	}
	app.templates = templates

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting Lotus", "addr", cfg.Addr(), "alliance_id", cfg.AllianceID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
