package ports

import (
	"context"

	"shiplife/internal/domain/catalog"
)

type CatalogSource interface {
	Load(ctx context.Context) (catalog.Tables, error)
}
