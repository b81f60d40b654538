package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hospilink-data/internal/domain"
)

// PostgresDoctorsRepository 医生目录Repository实现
type PostgresDoctorsRepository struct {
	db *sql.DB
}

func NewPostgresDoctorsRepository(db *sql.DB) *PostgresDoctorsRepository {
	return &PostgresDoctorsRepository{db: db}
}

var _ DoctorsRepository = (*PostgresDoctorsRepository)(nil)

// GetAllDoctors 获取全部在职医生
func (r *PostgresDoctorsRepository) GetAllDoctors(ctx context.Context) ([]domain.Doctor, error) {
	query := `
		SELECT
			id::text,
			name,
			COALESCE(department, '') as department,
			COALESCE(fee, 0) as fee
		FROM doctors
		WHERE COALESCE(is_active, TRUE)
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query doctors: %w", err)
	}
	defer rows.Close()

	var doctors []domain.Doctor
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Department, &d.Fee); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}
