package model

// DashboardStats is the role-specific dashboard summary. The concrete type is
// one of PatientStats, DoctorStats, AdminStats or LabStats.
type DashboardStats interface {
	StatsRole() Role
	dashboardStats()
}

type PatientStats struct {
	UpcomingAppointments int `json:"upcomingAppointments"`
	PendingReports       int `json:"pendingReports"`
	Prescriptions        int `json:"prescriptions"`
}

type DoctorStats struct {
	TodayAppointments int `json:"todayAppointments"`
	PendingLabs       int `json:"pendingLabs"`
	Completed         int `json:"completed"`
}

type AdminStats struct {
	TotalDoctors      int `json:"totalDoctors"`
	TodayAppointments int `json:"todayAppointments"`
	Revenue           int `json:"revenue"`
	PendingApprovals  int `json:"pendingApprovals"`
}

type LabStats struct {
	PendingTests   int    `json:"pendingTests"`
	CompletedToday int    `json:"completedToday"`
	WeeklyTotal    int    `json:"weeklyTotal"`
	AverageTat     string `json:"averageTat"`
}

func (PatientStats) StatsRole() Role { return RolePatient }
func (DoctorStats) StatsRole() Role  { return RoleDoctor }
func (AdminStats) StatsRole() Role   { return RoleAdmin }
func (LabStats) StatsRole() Role     { return RoleLab }

func (PatientStats) dashboardStats() {}
func (DoctorStats) dashboardStats()  {}
func (AdminStats) dashboardStats()   {}
func (LabStats) dashboardStats()     {}
