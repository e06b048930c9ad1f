package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

// DoctorLookup resolves a doctor-role user to their profile.
type DoctorLookup interface {
	GetDoctorByUserID(ctx context.Context, userID model.ID) (*model.Doctor, error)
}

// CallerDoctor returns the profile of the calling doctor. A doctor account
// without a profile cannot act as one.
func CallerDoctor(c *gin.Context, doctors DoctorLookup) (*model.Doctor, bool) {
	caller, ok := Caller(c)
	if !ok {
		return nil, false
	}
	d, err := doctors.GetDoctorByUserID(c.Request.Context(), caller.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			Fail(c, errors.Forbidden("caller has no doctor profile"))
		} else {
			Fail(c, err)
		}
		return nil, false
	}
	return d, true
}
