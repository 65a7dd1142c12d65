package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/etdpk/etdclient/internal/api"
	"github.com/etdpk/etdclient/internal/clients/etdapi"
	"github.com/etdpk/etdclient/internal/clients/verification"
	"github.com/etdpk/etdclient/internal/repository"
	"github.com/etdpk/etdclient/internal/service"
	"github.com/etdpk/etdclient/pkg/config"
	"github.com/etdpk/etdclient/pkg/job"
	"github.com/etdpk/etdclient/pkg/logger"
)

const (
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 60 * time.Second
	IdleTimeout       = 60 * time.Second
	ReadHeaderTimeout = 1 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("load config", err)

	l := logger.New(logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(l)

	store := repository.NewTokenStore(
		repository.NewFileStore(cfg.StatePath),
		repository.NewMemoryStore(),
	)

	apiClient := etdapi.NewClient(cfg, store)
	nadraClient := verification.NewNADRA(cfg)
	passportClient := verification.NewPassport(cfg)

	nav := api.NewNavigator()

	auth := service.NewAuthManager(cfg, apiClient, store, nav)
	roles := service.NewRoleManager(store, nav)
	apps := service.NewApplicationService(auth, store, nadraClient, passportClient)
	boards := service.NewDashboardService(auth, store)
	uploads := service.NewUploadService(cfg.Upload, auth, apiClient)

	h := api.NewHandler(auth, roles, apps, boards, uploads, nav)
	mw := api.NewMiddleware(l, auth, roles)
	router := api.NewRouter(h, mw)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	jobs := job.NewService().
		RegisterJob("refresh_token", cfg.Session.RefreshInterval, auth.RefreshIfExpiring)
	jobs.Start(ctx)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		l.Info("http server started", "port", cfg.HTTPPort, "environment", cfg.Environment)

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("listen and serve: %s", err)
		}

		l.Debug("http server stopped")
	}()

	waitSignal(l, cancel, server)
	jobs.Stop()
	wg.Wait()
}

func waitSignal(l *slog.Logger, cancel context.CancelFunc, server *http.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	sig := <-ch

	l.Info("got OS signal", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		l.Error("server shutdown", "error", err)
	}
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}
