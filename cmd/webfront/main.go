package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"webfront/configs"
	"webfront/internal/api"
	"webfront/internal/service"

	"go.uber.org/zap"
)

var (
	parseTemplates = service.ParseTemplates
	newLogger      = buildLogger
)

func main() {
	dotenvErr := configs.LoadDotenv()
	cfg, cfgErr := configs.Load()

	logger, err := newLogger(cfg != nil && cfg.Debug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	sugar := logger.Sugar()
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Warnf("logger sync: %v", err)
		}
	}()

	if dotenvErr != nil {
		sugar.Warnf("dotenv: %v", dotenvErr)
	}
	if cfgErr != nil {
		sugar.Fatalf("config load failed: %v", cfgErr)
	}

	handler, err := bootstrap(cfg, sugar)
	if err != nil {
		sugar.Fatalf("bootstrap failed: %v", err)
	}

	sigCtx, sigCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer sigCancel()

	if err := run(sigCtx, handler, sugar, cfg.HTTPAddr()); err != nil {
		sugar.Fatalf("server failed: %v", err)
	}
}

// buildLogger returns a development logger (debug level, console output) when
// debug is set, a production JSON logger otherwise.
func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, srv http.Handler, logger *zap.SugaredLogger, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Infof("server listening on %s", server.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down...")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %v", err)
			return err
		}
		<-errCh
		logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}
}

func bootstrap(cfg *configs.Config, logger *zap.SugaredLogger) (http.Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	svc := service.New(service.Page{
		HeaderText: cfg.HeaderText,
		ImageURL:   cfg.ImageURL,
	}, tmpl)
	if cfg.Debug {
		logger.Debugw("debug mode enabled", "header_text", cfg.HeaderText, "image_url", cfg.ImageURL)
	}
	return api.NewServer(svc, logger, cfg.Debug).Routes(), nil
}
