package parser

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/coverfang/pkg/model"
)

// ClassFunc builds one class. A nil class with a nil error drops the class.
type ClassFunc func(ctx context.Context, className string) (*model.Class, error)

// ProcessClasses runs fn for every class name on at most workers goroutines.
// Each worker writes into its own slot, so the returned classes follow the
// order of names regardless of scheduling. Dropped classes are omitted.
// The first error cancels the remaining work and is returned.
func ProcessClasses(ctx context.Context, workers int, names []string, fn ClassFunc) ([]*model.Class, error) {
	if len(names) == 0 {
		return nil, nil
	}

	slots := make([]*model.Class, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(workers, len(names))))

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			class, err := fn(gctx, name)
			if err != nil {
				return err
			}

			slots[i] = class

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	classes := make([]*model.Class, 0, len(slots))

	for _, class := range slots {
		if class != nil {
			classes = append(classes, class)
		}
	}

	return classes, nil
}
