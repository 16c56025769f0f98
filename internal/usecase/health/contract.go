package health

import "context"

// DBPinger checks document store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RetrievalChecker checks retrieval backend readiness.
type RetrievalChecker interface {
	Ready(ctx context.Context) error
}
