package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// EmployeeServiceImpl implements the EmployeeService interface.
type EmployeeServiceImpl struct {
	employeeRepo secondary.EmployeeRepository
}

// NewEmployeeService creates a new EmployeeService with injected dependencies.
func NewEmployeeService(employeeRepo secondary.EmployeeRepository) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

// SaveEmployee inserts or replaces an employee.
func (s *EmployeeServiceImpl) SaveEmployee(ctx context.Context, employee primary.Employee) error {
	if strings.TrimSpace(employee.ID) == "" {
		return apperr.Validation("employee ID is required")
	}
	if employee.SectionID == "" || employee.JobTitleID == "" || employee.GradeID == "" {
		return apperr.Validation("employee %s needs section, job title and grade", employee.ID)
	}
	if employee.ManagerID == employee.ID {
		return apperr.Validation("employee %s cannot manage themselves", employee.ID)
	}

	err := s.employeeRepo.Save(ctx, &secondary.EmployeeRecord{
		ID:         employee.ID,
		Name:       employee.Name,
		SectionID:  employee.SectionID,
		JobTitleID: employee.JobTitleID,
		GradeID:    employee.GradeID,
		ManagerID:  employee.ManagerID,
	})
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, employeeID string) (*primary.Employee, error) {
	record, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return employeeToPrimary(record), nil
}

// ListEmployees lists employees, optionally only one manager's reports.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, managerID string) ([]*primary.Employee, error) {
	records, err := s.employeeRepo.List(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]*primary.Employee, 0, len(records))
	for _, r := range records {
		employees = append(employees, employeeToPrimary(r))
	}
	return employees, nil
}

func employeeToPrimary(r *secondary.EmployeeRecord) *primary.Employee {
	return &primary.Employee{
		ID:         r.ID,
		Name:       r.Name,
		SectionID:  r.SectionID,
		JobTitleID: r.JobTitleID,
		GradeID:    r.GradeID,
		ManagerID:  r.ManagerID,
	}
}

var _ primary.EmployeeService = (*EmployeeServiceImpl)(nil)
