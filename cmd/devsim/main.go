// devsim serves an in-memory emulation of the device control API, for
// trying pinctl and the bridge without hardware.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/berfenger/irpin2mqtt/pkg/devsim"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

func main() {
	port := 8081
	if p, err := strconv.Atoi(os.Getenv("DEVSIM_PORT")); err == nil {
		port = p
	}
	flag.IntVar(&port, "port", port, "listen port (env DEVSIM_PORT)")
	singleValue := flag.Bool("single-value", false, "answer single pin reads with {\"value\": n}")
	flag.Parse()

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	dev := devsim.New(devsim.WithSingleValueShape(*singleValue))
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      dev.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("devsim forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("devsim listening", zap.Int("port", port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("devsim server error", zap.Error(err))
	}
	logger.Info("devsim stopped", zap.Int64("requests", dev.Requests()))
}
