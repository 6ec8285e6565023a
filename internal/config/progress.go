package config

import (
	"context"
	"fmt"
)

// ProgressStore persists where the next run starts.
type ProgressStore interface {
	SaveBeginLine(ctx context.Context, line int) error
}

// StoreProgress writes progress to the beginLine key of a Store.
type StoreProgress struct {
	store Store
}

// NewStoreProgress returns a ProgressStore writing through store.
func NewStoreProgress(store Store) *StoreProgress {
	return &StoreProgress{store: store}
}

// SaveBeginLine implements ProgressStore.
func (p *StoreProgress) SaveBeginLine(ctx context.Context, line int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.store.Set(KeyBeginLine, line); err != nil {
		return fmt.Errorf("save %s: %w", KeyBeginLine, err)
	}
	return nil
}

// AdvancePolicy computes the next begin line from the current one and
// whether the scan read its full window.
type AdvancePolicy func(begin int, completed bool) int

// AlwaysAdvanceBy moves the begin line forward by windowLength after every
// run, whether or not the scan completed.
//
// This is optimistic. A run that hit the end of the log still advances,
// so lines written later inside the skipped range are never scanned.
// Likewise, with several hosts a run reads windowLength lines per host
// but advances by windowLength only, so the next run rereads part of the
// previous one. Callers that want to avoid the first case wait until the
// log holds Config.LinesNeeded lines before running.
func AlwaysAdvanceBy(windowLength int) AdvancePolicy {
	return func(begin int, _ bool) int {
		return begin + windowLength
	}
}
