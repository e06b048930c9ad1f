// Package workflow holds the status transition rules for appointments and
// lab tests.
package workflow

import (
	"fmt"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

// TransitionPolicy decides whether a record may move between two statuses.
type TransitionPolicy interface {
	CheckAppointment(from, to model.AppointmentStatus) error
	CheckLabTest(from, to model.LabTestStatus) error
	Name() string
}

// Unchecked accepts every transition between known statuses. It is the
// default and matches how existing clients drive records today.
type Unchecked struct{}

func (Unchecked) Name() string { return "unchecked" }

func (Unchecked) CheckAppointment(_, to model.AppointmentStatus) error {
	if !to.Valid() {
		return errors.BadRequest(fmt.Sprintf("unknown appointment status %q", to), nil)
	}
	return nil
}

func (Unchecked) CheckLabTest(_, to model.LabTestStatus) error {
	if !to.Valid() {
		return errors.BadRequest(fmt.Sprintf("unknown lab test status %q", to), nil)
	}
	return nil
}

var appointmentEdges = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusScheduled: {model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled},
	model.AppointmentStatusConfirmed: {model.AppointmentStatusCompleted, model.AppointmentStatusCancelled},
}

var labTestEdges = map[model.LabTestStatus][]model.LabTestStatus{
	model.LabTestStatusRequested:  {model.LabTestStatusInProgress, model.LabTestStatusCompleted},
	model.LabTestStatusInProgress: {model.LabTestStatusCompleted},
}

// Strict enforces the adjacency tables above. Re-asserting the current
// status is always allowed.
type Strict struct{}

func (Strict) Name() string { return "strict" }

func (Strict) CheckAppointment(from, to model.AppointmentStatus) error {
	if err := (Unchecked{}).CheckAppointment(from, to); err != nil {
		return err
	}
	if from == to || contains(appointmentEdges[from], to) {
		return nil
	}
	return errors.BadRequest(fmt.Sprintf("appointment cannot move from %s to %s", from, to), nil)
}

func (Strict) CheckLabTest(from, to model.LabTestStatus) error {
	if err := (Unchecked{}).CheckLabTest(from, to); err != nil {
		return err
	}
	if from == to || contains(labTestEdges[from], to) {
		return nil
	}
	return errors.BadRequest(fmt.Sprintf("lab test cannot move from %s to %s", from, to), nil)
}

// ParsePolicy maps a configuration value onto a policy.
func ParsePolicy(name string) (TransitionPolicy, error) {
	switch name {
	case "", "unchecked":
		return Unchecked{}, nil
	case "strict":
		return Strict{}, nil
	default:
		return nil, fmt.Errorf("unknown transition policy %q", name)
	}
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
