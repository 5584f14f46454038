// Package wizard models linear multi-step forms: an ordered list of steps,
// each complete when its validation predicate accepts the accumulated data.
package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrNoSteps         = errors.New("wizard has no steps")
	ErrStepOutOfRange  = errors.New("step out of range")
	ErrIncompleteSteps = errors.New("required steps are incomplete")
	ErrDraftNotFound   = errors.New("draft not found")
)

// Step is one page of a form. Validate must be pure.
type Step[T any] struct {
	Name     string
	Required bool
	Validate func(data T) bool
}

// Machine tracks the current step (1-based) and the form data. Completion is
// never stored; it is recomputed from the data whenever it is asked for.
type Machine[T any] struct {
	steps   []Step[T]
	current int
	data    T
}

func New[T any](steps []Step[T], data T) (*Machine[T], error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return &Machine[T]{steps: steps, current: 1, data: data}, nil
}

func (m *Machine[T]) Current() int { return m.current }

func (m *Machine[T]) Len() int { return len(m.steps) }

func (m *Machine[T]) Data() T { return m.data }

func (m *Machine[T]) SetData(data T) { m.data = data }

// Steps returns the step definitions in order.
func (m *Machine[T]) Steps() []Step[T] {
	return append([]Step[T](nil), m.steps...)
}

// Step returns the definition of the current step.
func (m *Machine[T]) Step() Step[T] { return m.steps[m.current-1] }

// Next advances one step. It reports false on the last step.
func (m *Machine[T]) Next() bool {
	if m.current >= len(m.steps) {
		return false
	}
	m.current++
	return true
}

// Previous goes back one step. It reports false on the first step.
func (m *Machine[T]) Previous() bool {
	if m.current <= 1 {
		return false
	}
	m.current--
	return true
}

func (m *Machine[T]) JumpTo(step int) error {
	if step < 1 || step > len(m.steps) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrStepOutOfRange, step, len(m.steps))
	}
	m.current = step
	return nil
}

// IsComplete reports whether step (1-based) validates against the current data.
func (m *Machine[T]) IsComplete(step int) bool {
	if step < 1 || step > len(m.steps) {
		return false
	}
	s := m.steps[step-1]
	if s.Validate == nil {
		return true
	}
	return s.Validate(m.data)
}

// Completed returns the completion flag of every step in order.
func (m *Machine[T]) Completed() []bool {
	out := make([]bool, len(m.steps))
	for i := range m.steps {
		out[i] = m.IsComplete(i + 1)
	}
	return out
}

// Missing names the required steps that do not validate yet.
func (m *Machine[T]) Missing() []string {
	var missing []string
	for i, s := range m.steps {
		if s.Required && !m.IsComplete(i+1) {
			missing = append(missing, s.Name)
		}
	}
	return missing
}

func (m *Machine[T]) CanSubmit() bool {
	return len(m.Missing()) == 0
}

// Submit runs fn only when every required step validates.
func (m *Machine[T]) Submit(fn func(data T) error) error {
	if missing := m.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrIncompleteSteps, missing)
	}
	return fn(m.data)
}
