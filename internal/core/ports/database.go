// internal/core/ports/database.go
package ports

import "context"

// HealthChecker is implemented by every backing dependency the health
// endpoint reports on.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}
