package stock

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gudangku/gudangku/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, search string, limit, offset int) ([]Level, error)
}

// Service answers stock listing queries.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the stock service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns one page of stock levels with the total match count.
func (s *Service) List(ctx context.Context, params shared.ListParams) (ListResult, error) {
	params = params.Normalize()

	var (
		total  int
		levels []Level
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(ctx, params.Search)
		return err
	})
	g.Go(func() error {
		var err error
		levels, err = s.repo.List(ctx, params.Search, params.Limit, params.Offset())
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}
	if levels == nil {
		levels = []Level{}
	}
	return ListResult{Data: levels, Total: total, Page: params.Page, Limit: params.Limit}, nil
}
