// Package utils предоставляет вспомогательные функции для graceful shutdown.
//
// Использование:
//
//	ctx, shutdown := utils.SetupGracefulShutdown(context.Background())
//	defer shutdown()
//
// Контекст отменяется при SIGINT (Ctrl+C) или SIGTERM; HTTP сервер и
// запросы к LLM, унаследовавшие этот контекст, завершаются.
package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupGracefulShutdown возвращает контекст, отменяемый сигналом ОС, и функцию
// очистки, которую следует вызвать через defer.
func SetupGracefulShutdown(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	// Канал для OS сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
		Close()
	}
}
