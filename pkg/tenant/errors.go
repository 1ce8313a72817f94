package tenant

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoName                    = errors.New("tenant name is required")
	ErrNoWarehouses              = errors.New("no warehouses declared")
	ErrNoDefaultWarehouse        = errors.New("no warehouse is flagged default")
	ErrMultipleDefaultWarehouses = errors.New("more than one warehouse is flagged default")
	ErrInvalidWarehouse          = errors.New("invalid warehouse")
)

// ConfigError reports a tenant configuration that cannot be built. It is
// returned before anything is registered in the graph.
type ConfigError struct {
	Tenant     string
	Warehouses []WarehouseArgs
	Err        error
}

func (e *ConfigError) Error() string {
	names := make([]string, len(e.Warehouses))
	for i, w := range e.Warehouses {
		name := w.Name
		if w.Default {
			name += " (default)"
		}
		names[i] = name
	}
	return fmt.Sprintf("tenant %q: %v; warehouses: [%s]", e.Tenant, e.Err, strings.Join(names, ", "))
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
