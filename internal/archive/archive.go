// Package archive copies records to long-term stores before they are purged.
package archive

import (
	"context"

	"go-jewelry-pos/internal/export"
)

// Sink receives archived records. Implementations must be idempotent per record number.
type Sink interface {
	Name() string
	Archive(ctx context.Context, data export.Dataset) (int, error)
	Close(ctx context.Context) error
}
