package app

import (
	"context"

	"github.com/dwikikusuma/resto-pos/internal/catalog/domain"
)

type CatalogAPI interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
}
