package access

import "github.com/jwalitptl/clinic-ops/internal/model"

// Scope narrows a collection for one role.
type Scope int

const (
	// ScopeNone hides every record.
	ScopeNone Scope = iota
	// ScopeOwnPatient shows records whose patient is the caller.
	ScopeOwnPatient
	// ScopeOwnDoctor shows records whose doctor is the caller's doctor profile.
	ScopeOwnDoctor
	// ScopeAll shows every record.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeOwnPatient:
		return "own_patient"
	case ScopeOwnDoctor:
		return "own_doctor"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// Policy is one row of the access matrix.
type Policy struct {
	Appointments  Scope
	Prescriptions Scope
	LabTests      Scope
}

// Lab assistants see the full appointment schedule.
var policies = map[model.Role]Policy{
	model.RolePatient: {Appointments: ScopeOwnPatient, Prescriptions: ScopeOwnPatient, LabTests: ScopeOwnPatient},
	model.RoleDoctor:  {Appointments: ScopeOwnDoctor, Prescriptions: ScopeOwnDoctor, LabTests: ScopeOwnDoctor},
	model.RoleAdmin:   {Appointments: ScopeAll, Prescriptions: ScopeAll, LabTests: ScopeAll},
	model.RoleLab:     {Appointments: ScopeAll, Prescriptions: ScopeAll, LabTests: ScopeAll},
}

// PolicyFor returns the access row for role. Unknown roles see nothing.
func PolicyFor(role model.Role) Policy {
	return policies[role]
}

// owned is satisfied by every record that carries patient and doctor keys.
type owned interface {
	PatientRef() model.ID
	DoctorRef() model.ID
}

type subject struct {
	userID    model.ID
	doctorID  model.ID
	hasDoctor bool
}

func (s subject) sees(scope Scope, rec owned) bool {
	switch scope {
	case ScopeAll:
		return true
	case ScopeOwnPatient:
		return rec.PatientRef() == s.userID
	case ScopeOwnDoctor:
		return s.hasDoctor && rec.DoctorRef() == s.doctorID
	default:
		return false
	}
}

func narrow[T owned](records []T, scope Scope, who subject) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if who.sees(scope, rec) {
			out = append(out, rec)
		}
	}
	return out
}
