package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

func TestUncheckedAllowsAnyKnownAppointmentStatus(t *testing.T) {
	p := Unchecked{}
	assert.NoError(t, p.CheckAppointment(model.AppointmentStatusCompleted, model.AppointmentStatusScheduled))
	assert.NoError(t, p.CheckAppointment(model.AppointmentStatusCancelled, model.AppointmentStatusConfirmed))
	assert.NoError(t, p.CheckLabTest(model.LabTestStatusCompleted, model.LabTestStatusRequested))

	err := p.CheckAppointment(model.AppointmentStatusScheduled, "archived")
	assert.ErrorIs(t, err, errors.ValidationError)
}

func TestStrictAppointmentTransitions(t *testing.T) {
	tests := []struct {
		from, to model.AppointmentStatus
		ok       bool
	}{
		{model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, false},
		{model.AppointmentStatusCancelled, model.AppointmentStatusScheduled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := Strict{}.CheckAppointment(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errors.ValidationError)
			}
		})
	}
}

func TestStrictLabTestTransitions(t *testing.T) {
	p := Strict{}
	assert.NoError(t, p.CheckLabTest(model.LabTestStatusRequested, model.LabTestStatusInProgress))
	assert.NoError(t, p.CheckLabTest(model.LabTestStatusRequested, model.LabTestStatusCompleted))
	assert.NoError(t, p.CheckLabTest(model.LabTestStatusInProgress, model.LabTestStatusCompleted))
	assert.Error(t, p.CheckLabTest(model.LabTestStatusCompleted, model.LabTestStatusRequested))
	assert.Error(t, p.CheckLabTest(model.LabTestStatusInProgress, model.LabTestStatusRequested))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	assert.NoError(t, err)
	assert.Equal(t, "unchecked", p.Name())

	p, err = ParsePolicy("strict")
	assert.NoError(t, err)
	assert.Equal(t, "strict", p.Name())

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}
