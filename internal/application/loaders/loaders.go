package loaders

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	apperrors "github.com/ericyum/tour-agent-backend/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders holds the request-scoped batch loaders.
type Loaders struct {
	FestivalByTitle *dataloader.Loader[string, *entities.Festival]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(repo repositories.RecordRepository) *Loaders {
	return &Loaders{
		FestivalByTitle: dataloader.NewBatchedLoader(func(ctx context.Context, titles []string) []*dataloader.Result[*entities.Festival] {
			results := make([]*dataloader.Result[*entities.Festival], len(titles))
			festivals, err := repo.FestivalsByTitles(ctx, titles)

			byTitle := make(map[string]*entities.Festival, len(festivals))
			if err == nil {
				for _, f := range festivals {
					if _, dup := byTitle[f.Title]; !dup {
						byTitle[f.Title] = f
					}
				}
			}

			for i, title := range titles {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Festival]{Error: err}
				} else if f, ok := byTitle[title]; ok {
					results[i] = &dataloader.Result[*entities.Festival]{Data: f}
				} else {
					results[i] = &dataloader.Result[*entities.Festival]{Error: apperrors.NewNotFoundError("festival not found: " + title)}
				}
			}
			return results
		}, dataloader.WithBatchCapacity[string, *entities.Festival](100)),
	}
}

// For returns the loaders attached to ctx, or nil.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
