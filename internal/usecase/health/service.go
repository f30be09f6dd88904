package health

import "context"

// Status is the aggregated service health.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is down but search still
	// works against the document store.
	Degraded Status = "degraded"
	// Unhealthy indicates the document store itself is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is an individual component outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates component checks.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. The document store is essential; the
// cache and the encoder only degrade the service when down (searches fall
// through the cache, ingestion stalls).
type Service struct {
	db      DBPinger
	cache   CachePinger
	encoder EncoderChecker
}

// New creates a Service. cache and encoder can be nil.
func New(db DBPinger, cache CachePinger, encoder EncoderChecker) *Service {
	return &Service{db: db, cache: cache, encoder: encoder}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.encoder != nil {
		if err := s.encoder.HealthCheck(ctx); err != nil {
			checks["encoder"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["encoder"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
