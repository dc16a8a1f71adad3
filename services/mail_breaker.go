package services

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerMailer stops calling a failing transport until timeout has passed.
type BreakerMailer struct {
	next Mailer
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerMailer(next Mailer, maxFailures uint32, timeout time.Duration, logger *zap.Logger) *BreakerMailer {
	if maxFailures == 0 {
		maxFailures = 5
	}
	st := gobreaker.Settings{
		Name:        "mailer",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &BreakerMailer{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (m *BreakerMailer) Send(ctx context.Context, msg Message) error {
	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.next.Send(ctx, msg)
	})
	return err
}
