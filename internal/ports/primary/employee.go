package primary

import "context"

// EmployeeService defines the primary port for the employee directory the
// engine reads from.
type EmployeeService interface {
	// SaveEmployee inserts or replaces an employee.
	SaveEmployee(ctx context.Context, employee Employee) error

	// GetEmployee retrieves an employee by ID.
	GetEmployee(ctx context.Context, employeeID string) (*Employee, error)

	// ListEmployees lists employees, optionally only one manager's reports.
	ListEmployees(ctx context.Context, managerID string) ([]*Employee, error)
}

// Employee represents an employee at the port boundary.
type Employee struct {
	ID         string
	Name       string
	SectionID  string
	JobTitleID string
	GradeID    string
	ManagerID  string
}
