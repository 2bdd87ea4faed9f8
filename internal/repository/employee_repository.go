package repository

import (
	"context"
	"database/sql"

	"github.com/attendsync/server/internal/models"
)

// EmployeeRepository implements EmployeeRepo for PostgreSQL/SQLite
type EmployeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := `SELECT id, name, device_user_id, created_at FROM employees WHERE id = $1`

	var employee models.Employee
	var deviceUserID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&employee.ID, &employee.Name, &deviceUserID, &employee.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	employee.DeviceUserID = deviceUserID.String
	return &employee, nil
}

func (r *EmployeeRepository) GetByDeviceUserID(ctx context.Context, deviceUserID string) (*models.Employee, error) {
	query := `SELECT id, name, device_user_id, created_at FROM employees WHERE device_user_id = $1`

	var employee models.Employee
	var devUserID sql.NullString
	err := r.db.QueryRowContext(ctx, query, deviceUserID).Scan(
		&employee.ID, &employee.Name, &devUserID, &employee.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	employee.DeviceUserID = devUserID.String
	return &employee, nil
}

func (r *EmployeeRepository) GetAll(ctx context.Context) ([]*models.Employee, error) {
	query := `SELECT id, name, device_user_id, created_at FROM employees ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		var employee models.Employee
		var deviceUserID sql.NullString
		if err := rows.Scan(&employee.ID, &employee.Name, &deviceUserID, &employee.CreatedAt); err != nil {
			return nil, err
		}
		employee.DeviceUserID = deviceUserID.String
		employees = append(employees, &employee)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) Add(ctx context.Context, employee *models.Employee) error {
	query := `INSERT INTO employees (id, name, device_user_id, created_at)
			  VALUES ($1, $2, $3, $4)`

	var deviceUserID sql.NullString
	if employee.DeviceUserID != "" {
		deviceUserID = sql.NullString{String: employee.DeviceUserID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		employee.ID, employee.Name, deviceUserID, employee.CreatedAt,
	)
	return err
}
