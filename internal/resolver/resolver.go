package resolver

import (
	"context"

	"github.com/bayleafwalker/bindery-graph/internal/metadata"
)

// Resolver reduces the candidates of a provide name to one preferred
// definition file.
//
// Implementations are deterministic: identical catalogs and policies always
// yield identical selections.
type Resolver interface {
	Resolve(ctx context.Context, name string, kind metadata.Kind) (Selection, error)
	// PreferredFiles returns the preferred file of every build provide name,
	// minus any file excluded while resolving some other provide.
	PreferredFiles(ctx context.Context) ([]string, error)
}
