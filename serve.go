package main

import (
	"context"
	"errors"
	"github.com/gin-gonic/gin"
	"net/http"
	"os"
	"os/signal"
	"print-vault/api"
	"print-vault/utils"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Watch keeps the library in sync with the model root until interrupted.
func (ctx *Context) Watch() error {
	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctx.Watcher.SetEnabled(signalCtx, true); err != nil {
		return err
	}

	defer ctx.Watcher.Stop()

	status := ctx.Watcher.Status()
	utils.ConsoleAndLogPrintf("Watching \"%s\" with %s. Press Ctrl+C to stop.", status.Root, utils.Pluralize("watch", int64(status.WatchCount)))

	<-signalCtx.Done()
	return nil
}

func (ctx *Context) Serve() error {
	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctx.Watcher.Initialize(signalCtx); err != nil {
		ctx.Log.Warnw("file watcher not started", "error", err)
	}

	defer ctx.Watcher.Stop()

	if !ctx.Config.IsDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(api.Dependencies{
		Settings: ctx.Settings,
		Scanner:  ctx.Scanner,
		Watcher:  ctx.Watcher,
		Ingest:   ctx.Ingest,
		Catalog:  ctx.Catalog,
		Log:      ctx.Log,
	})

	httpServer := &http.Server{
		Addr:              ctx.Config.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		utils.ConsoleAndLogPrintf("Listening on http://%s", ctx.Config.ListenAddress)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err

	case <-signalCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
