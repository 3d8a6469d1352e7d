package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// mutation is the result of applying updates to a loaded entity.
type mutation[T any] struct {
	before  map[string]any
	changes []domain.AuditChange
	next    *T
}

// applyUpdates snapshots current, diffs updates against it and decodes the
// after-state into a fresh value. current is left untouched.
func applyUpdates[T any](current *T, updates domain.Updates) (*mutation[T], error) {
	before, err := domain.Snapshot(current)
	if err != nil {
		return nil, apperror.Storage("failed to snapshot resource", err)
	}

	changes := domain.Diff(before, updates)
	after := domain.Apply(before, changes)

	next := new(T)
	if err := domain.Restore(after, next); err != nil {
		return nil, apperror.Validation("Invalid field value").WithField("body", err.Error())
	}

	return &mutation[T]{before: before, changes: changes, next: next}, nil
}

// checkMutable rejects updates naming fields outside allowed.
func checkMutable(allowed []string, updates domain.Updates) error {
	if len(updates) == 0 {
		return apperror.Validation("No fields to update")
	}
	bad := entity.DisallowedFields(allowed, updates.Names())
	if len(bad) == 0 {
		return nil
	}
	e := apperror.New(apperror.KindValidation, apperror.ErrCodeImmutableField, "Some fields cannot be updated", nil)
	for _, f := range bad {
		e.WithField(f, "cannot be updated")
	}
	return e
}

// repoError converts repository sentinels into application errors.
func repoError(err error, resource, id, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, outbound.ErrNotFound):
		return apperror.NotFound(resource, id)
	case errors.Is(err, outbound.ErrDuplicate):
		return apperror.Conflict(fmt.Sprintf("%s already exists", resource))
	default:
		return apperror.Storage(fmt.Sprintf("failed to %s %s", op, resource), err)
	}
}

func normalizeListFilter(f outbound.ListFilter) outbound.ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
