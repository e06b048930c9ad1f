package model

// Doctor is the clinical profile attached to a doctor-role user.
type Doctor struct {
	ID            ID      `json:"id"`
	UserID        ID      `json:"user_id"`
	Specialty     string  `json:"specialty"`
	Department    string  `json:"department"`
	LicenseNumber *string `json:"license_number,omitempty"`
	Experience    *int    `json:"experience,omitempty"`
	IsActive      bool    `json:"is_active"`
}

func (d Doctor) Clone() Doctor {
	d.LicenseNumber = cloneString(d.LicenseNumber)
	d.Experience = cloneInt(d.Experience)
	return d
}

// DoctorProfile carries the doctor-specific fields of a registration.
type DoctorProfile struct {
	Specialty     string  `json:"specialty" binding:"required"`
	Department    string  `json:"department" binding:"required"`
	LicenseNumber *string `json:"license_number"`
	Experience    *int    `json:"experience" binding:"omitempty,min=0"`
}

type CreateDoctorRequest struct {
	UserID ID `json:"user_id" binding:"required,gt=0"`
	DoctorProfile
}
