package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
)

// chapterResult is the outcome for the chapter at the same index.
type chapterResult[T any] struct {
	value T
	err   error // recoverable; the chapter is dropped
}

// mapChapters applies fn to every chapter on at most workers goroutines.
// Results keep the input order. Recoverable errors are returned per
// chapter; any other error cancels the remaining work and is returned.
func mapChapters[T any](ctx context.Context, workers int, chapters []*novel.Chapter, fn func(*novel.Chapter) (T, error)) ([]chapterResult[T], error) {
	results := make([]chapterResult[T], len(chapters))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, c := range chapters {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(c)
			if err != nil {
				if ferrors.IsRecoverable(err) {
					results[i].err = err
					return nil
				}
				return err
			}
			results[i].value = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
