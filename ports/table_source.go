package ports

import (
	"context"

	"sentinel/domain/military"
)

// TableSource provides the loaded military-power table. Implementations load
// lazily, share one immutable table between callers and surface SCHEMA_ERROR
// or DATA_LOAD_ERROR unrecovered.
type TableSource interface {
	Load(ctx context.Context) (*military.Table, error)
}
