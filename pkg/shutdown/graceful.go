// Package shutdown предоставляет функциональность для корректного завершения приложения
// путем ожидания сигналов SIGINT и SIGTERM.
package shutdown

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tokengate/pkg/logger"
)

// ErrTimeout возвращается, если хуки не уложились в отведенное время.
var ErrTimeout = errors.New("graceful shutdown timed out")

// Hook освобождает один ресурс процесса.
type Hook func(ctx context.Context) error

// Wait блокируется до сигнала SIGINT/SIGTERM или отмены ctx, затем
// последовательно выполняет хуки в переданном порядке в пределах timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Log(ctx).Info(ctx, "shutdown started", zap.Duration("timeout", timeout))

	return Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run выполняет хуки по порядку. Ошибки хуков собираются, выполнение не прерывается.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var errs []error
		for _, hook := range hooks {
			if err := hook(ctx); err != nil {
				logger.Log(ctx).Error(ctx, "shutdown hook failed", zap.Error(err))
				errs = append(errs, err)
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrTimeout
	}
}
