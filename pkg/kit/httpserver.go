package kit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ListenFirstFree binds the first free port in [from, to] on host.
func ListenFirstFree(host string, from, to int, log *zap.Logger) (net.Listener, error) {
	if to < from {
		to = from
	}
	for port := from; port <= to; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return ln, nil
		}
		if !isAddrInUse(err) {
			return nil, err
		}
		log.Info("port busy, trying next", zap.Int("port", port))
	}
	return nil, fmt.Errorf("no free port in range %d-%d", from, to)
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

// RunHTTPServer serves h on ln until SIGINT/SIGTERM or ctx is done, then
// shuts down gracefully. onShutdown hooks run when shutdown starts; long-lived
// streams must end there or Shutdown waits for its timeout.
func RunHTTPServer(ctx context.Context, ln net.Listener, h http.Handler, log *zap.Logger, onShutdown ...func()) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	for _, f := range onShutdown {
		srv.RegisterOnShutdown(f)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		log.Info("shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
