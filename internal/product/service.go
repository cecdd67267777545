package product

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gudangku/gudangku/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, search string, limit, offset int) ([]Product, error)
}

// Service answers product listing queries.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the product service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns one page of products with the total match count. The count and
// page queries run concurrently.
func (s *Service) List(ctx context.Context, params shared.ListParams) (ListResult, error) {
	params = params.Normalize()

	var (
		total    int
		products []Product
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(ctx, params.Search)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.repo.List(ctx, params.Search, params.Limit, params.Offset())
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}
	if products == nil {
		products = []Product{}
	}
	return ListResult{Data: products, Total: total, Page: params.Page, Limit: params.Limit}, nil
}
