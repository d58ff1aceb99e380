package health

import "context"

// DBPinger checks shared cache store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ReferenceChecker checks whether the remote reference service is reachable.
type ReferenceChecker interface {
	HealthCheck(ctx context.Context) error
}
