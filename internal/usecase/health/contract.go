package health

import "context"

// DBPinger checks document store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EncoderChecker checks embedding provider availability.
type EncoderChecker interface {
	HealthCheck(ctx context.Context) error
}
