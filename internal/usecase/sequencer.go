package usecase

import (
	"context"

	"github.com/rocksoup/mbtheme/internal/ports"
)

// Sequencer walks items strictly one at a time. The gate is waited on before
// each item and told when it finished, so the pause follows the work.
type Sequencer[T any] struct {
	gate ports.Gate
}

// NewSequencer wraps a gate; a nil gate runs items back to back.
func NewSequencer[T any](gate ports.Gate) *Sequencer[T] {
	return &Sequencer[T]{gate: gate}
}

// Each calls fn for every item in order. It stops early only when the gate
// reports a cancelled context.
func (s *Sequencer[T]) Each(ctx context.Context, items []T, fn func(ctx context.Context, index int, item T)) error {
	for i, item := range items {
		if s.gate != nil {
			if err := s.gate.Wait(ctx); err != nil {
				return err
			}
		}
		fn(ctx, i, item)
		if s.gate != nil {
			s.gate.Done()
		}
	}
	return nil
}
