package assessment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/assessment"
	"github.com/yuadm/first-step-greet/internal/pkg/wizard"
)

// form hides the concrete data type of a wizard behind one interface so the
// service can treat every FormKind alike.
type form interface {
	current() int
	navigate(action string, step int) error
	steps() []assessment.StepState
	missing() []string
	canSubmit() bool
	submit(fn func(data any) error) error
}

type typedForm[T any] struct {
	machine *wizard.Machine[T]
}

func newTypedForm[T any](steps []wizard.Step[T], raw json.RawMessage, step int) (*typedForm[T], error) {
	var data T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", assessment.ErrInvalidFormData, err)
		}
	}

	m, err := wizard.New(steps, data)
	if err != nil {
		return nil, err
	}
	if step > 0 {
		if err := m.JumpTo(step); err != nil {
			// A stored step beyond the current definition restarts the form.
			_ = m.JumpTo(1)
		}
	}
	return &typedForm[T]{machine: m}, nil
}

// newForm builds the wizard for kind from raw JSON data positioned at step.
func newForm(kind assessment.FormKind, raw json.RawMessage, step int) (form, error) {
	switch kind {
	case assessment.FormSpotCheck:
		return newTypedForm(assessment.SpotCheckSteps(), raw, step)
	case assessment.FormCompetency:
		return newTypedForm(assessment.CompetencySteps(), raw, step)
	case assessment.FormJobApplication:
		return newTypedForm(assessment.JobApplicationSteps(), raw, step)
	}
	return nil, assessment.ErrUnknownForm
}

func (f *typedForm[T]) current() int {
	return f.machine.Current()
}

func (f *typedForm[T]) navigate(action string, step int) error {
	switch action {
	case assessment.ActionNext:
		f.machine.Next()
	case assessment.ActionPrevious:
		f.machine.Previous()
	case assessment.ActionJumpTo:
		if err := f.machine.JumpTo(step); err != nil {
			return fmt.Errorf("%w: %v", assessment.ErrInvalidFormData, err)
		}
	}
	return nil
}

func (f *typedForm[T]) steps() []assessment.StepState {
	completed := f.machine.Completed()
	states := make([]assessment.StepState, 0, len(completed))
	for i, s := range f.machine.Steps() {
		states = append(states, assessment.StepState{
			Number:   i + 1,
			Name:     s.Name,
			Required: s.Required,
			Complete: completed[i],
		})
	}
	return states
}

func (f *typedForm[T]) missing() []string {
	return f.machine.Missing()
}

func (f *typedForm[T]) canSubmit() bool {
	return f.machine.CanSubmit()
}

func (f *typedForm[T]) submit(fn func(data any) error) error {
	err := f.machine.Submit(func(data T) error {
		return fn(data)
	})
	if errors.Is(err, wizard.ErrIncompleteSteps) {
		return fmt.Errorf("%w: %v", assessment.ErrFormIncomplete, f.machine.Missing())
	}
	return err
}
