package employee

import "time"

// Employee is the directory view this engine needs: identity, organizational
// placement for payslip snapshots, and tenure for period eligibility.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	Department   string
	Designation  string
	JoinDate     time.Time
	ExitDate     *time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmployedDuring reports whether the employee's tenure overlaps the given
// payroll period.
func (e Employee) EmployedDuring(month, year int) bool {
	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if e.JoinDate.After(periodEnd) {
		return false
	}
	if e.ExitDate != nil && e.ExitDate.Before(periodStart) {
		return false
	}
	return true
}

// Snapshot is the denormalized employee data copied onto payslips at
// processing time for historical fidelity.
type Snapshot struct {
	EmployeeID   string
	EmployeeCode string
	FullName     string
	Department   string
	Designation  string
}
