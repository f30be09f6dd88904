package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/newsdex/newsdex/internal/domain"
)

type mockCounter struct {
	counts    map[string]int64
	incrErr   error
	expireErr error
	expireNX  []bool
}

func newMockCounter() *mockCounter {
	return &mockCounter{counts: make(map[string]int64)}
}

func (m *mockCounter) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.counts[key] += val
	return m.counts[key], nil
}

func (m *mockCounter) Expire(_ context.Context, _ string, _ time.Duration, nx bool) error {
	m.expireNX = append(m.expireNX, nx)
	return m.expireErr
}

type mockTally struct {
	counts map[string]int64
	err    error
}

func newMockTally() *mockTally {
	return &mockTally{counts: make(map[string]int64)}
}

func (m *mockTally) IncrementRequestCount(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.counts[userID]++
	return nil
}

func TestAllow_UnderLimit(t *testing.T) {
	counter := newMockCounter()
	tally := newMockTally()
	svc := New(counter, tally, 5, time.Hour, zap.NewNop())

	for i := 0; i < 5; i++ {
		if err := svc.Allow(context.Background(), "u1"); err != nil {
			t.Fatalf("request %d rejected under limit: %v", i+1, err)
		}
	}
	if tally.counts["u1"] != 5 {
		t.Fatalf("expected tally 5, got %d", tally.counts["u1"])
	}
}

func TestAllow_OverLimit(t *testing.T) {
	counter := newMockCounter()
	svc := New(counter, nil, 5, time.Hour, zap.NewNop())

	for i := 0; i < 5; i++ {
		if err := svc.Allow(context.Background(), "u1"); err != nil {
			t.Fatalf("unexpected rejection: %v", err)
		}
	}
	if err := svc.Allow(context.Background(), "u1"); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded on request 6, got %v", err)
	}
}

func TestAllow_WindowSetOnceNX(t *testing.T) {
	counter := newMockCounter()
	svc := New(counter, nil, 5, time.Hour, zap.NewNop())

	_ = svc.Allow(context.Background(), "u1")
	_ = svc.Allow(context.Background(), "u1")

	if len(counter.expireNX) != 2 {
		t.Fatalf("expected expire call per request, got %d", len(counter.expireNX))
	}
	for _, nx := range counter.expireNX {
		if !nx {
			t.Fatal("expire must use NX so later requests never extend the window")
		}
	}
}

func TestAllow_MissingUserID(t *testing.T) {
	svc := New(newMockCounter(), nil, 5, time.Hour, zap.NewNop())

	if err := svc.Allow(context.Background(), ""); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestAllow_CounterFailureAdmits(t *testing.T) {
	counter := newMockCounter()
	counter.incrErr = errors.New("redis down")
	svc := New(counter, nil, 5, time.Hour, zap.NewNop())

	if err := svc.Allow(context.Background(), "u1"); err != nil {
		t.Fatalf("counter outage must admit, got %v", err)
	}
}

func TestAllow_UsersCountedSeparately(t *testing.T) {
	counter := newMockCounter()
	svc := New(counter, nil, 1, time.Hour, zap.NewNop())

	if err := svc.Allow(context.Background(), "u1"); err != nil {
		t.Fatalf("u1 first request: %v", err)
	}
	if err := svc.Allow(context.Background(), "u2"); err != nil {
		t.Fatalf("u2 must have its own window: %v", err)
	}
	if err := svc.Allow(context.Background(), "u1"); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("u1 second request should exceed, got %v", err)
	}
}
