package namespace

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	opRename = "rename"
	opDelete = "delete"
)

type outcome string

const (
	outcomeSucceeded outcome = "succeeded"
	outcomeSkipped   outcome = "skipped"
	outcomeFailed    outcome = "failed"
)

type KeyError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// Report is the per-object result of a rename or delete. Skipped counts
// objects that disappeared between being listed and being processed.
type Report struct {
	Succeeded int        `json:"succeeded"`
	Skipped   int        `json:"skipped"`
	Failed    []KeyError `json:"failed"`
}

// Err returns ErrPartialFailure when any object failed.
func (r *Report) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	return apperrors.Wrapf(apperrors.ErrPartialFailure, "%d of %d objects failed", len(r.Failed), r.Total())
}

func (r *Report) Total() int {
	return r.Succeeded + r.Skipped + len(r.Failed)
}

// runBatch streams every key under prefix through fn with at most m.workers
// in flight. fn runs on a context that ignores cancellation so that an
// operation already started finishes, but once ctx is done no further keys
// are dispatched.
func (m *Manager) runBatch(ctx context.Context, op, prefix string, fn func(context.Context, string) (outcome, error)) (*Report, error) {
	report := &Report{Failed: []KeyError{}}
	var mu sync.Mutex

	var limiter *rate.Limiter
	if m.opsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(m.opsPerSecond), 1)
	}

	detached := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(m.workers)

	var stopErr error
	for obj, err := range objectstore.Walk(ctx, m.store, objectstore.ListInput{Prefix: prefix}) {
		if err != nil {
			stopErr = err
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				stopErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}

		key := obj.Key
		g.Go(func() error {
			result, err := fn(detached, key)

			mu.Lock()
			defer mu.Unlock()
			switch result {
			case outcomeSucceeded:
				report.Succeeded++
			case outcomeSkipped:
				report.Skipped++
			default:
				report.Failed = append(report.Failed, KeyError{Key: key, Error: err.Error()})
				log.Warn().Err(err).Str("op", op).Str("key", key).Msg("batch object failed")
			}
			if m.observer != nil {
				m.observer.ObserveBatchObject(op, string(result))
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Str("op", op).
		Str("prefix", prefix).
		Int("succeeded", report.Succeeded).
		Int("skipped", report.Skipped).
		Int("failed", len(report.Failed)).
		Msg("batch finished")

	if stopErr != nil {
		return report, fmt.Errorf("[Manager %s] stopped after %d objects: %w", op, report.Total(), stopErr)
	}
	return report, report.Err()
}
