package resilience

import (
	"context"
	"time"
)

// Guarded выполняет fn с таймаутом timeout под защитой cb.
// Таймаут и открытый Circuit Breaker возвращаются как ошибки, а не как нулевой результат.
func Guarded[T any](
	ctx context.Context,
	cb *CircuitBreaker,
	timeout time.Duration,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var result T

	err := cb.Execute(ctx, func() error {
		opCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		value, err := fn(opCtx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})

	return result, err
}
