package middleware

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-ops/internal/model"
)

// FieldError is one failed binding rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var customErrorMessages = map[string]string{
	"required":           "is required",
	"email":              "must be a valid email address",
	"min":                "is too short",
	"max":                "is too long",
	"gt":                 "must be positive",
	"role":               "must be one of patient, doctor, admin, lab",
	"priority":           "must be one of normal, urgent, emergency",
	"appointment_status": "must be one of scheduled, confirmed, completed, cancelled",
	"labtest_status":     "must be one of requested, in_progress, completed",
}

func stringValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}

var customValidators = map[string]validator.Func{
	"role":               stringValidator(func(s string) bool { return model.Role(s).Valid() }),
	"priority":           stringValidator(func(s string) bool { return model.LabTestPriority(s).Valid() }),
	"appointment_status": stringValidator(func(s string) bool { return model.AppointmentStatus(s).Valid() }),
	"labtest_status":     stringValidator(func(s string) bool { return model.LabTestStatus(s).Valid() }),
}

var registerOnce sync.Once

// RegisterValidators installs the domain validation tags on gin's binding
// validator and reports fields by their JSON names.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		for tag, fn := range customValidators {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return err
}

func fieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		msg, ok := customErrorMessages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s validation", e.Tag())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}
