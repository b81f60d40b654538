package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"hospilink-data/internal/domain"

	"github.com/lib/pq"
)

// PostgresPatientsRepository 患者Repository实现（强类型版本）
type PostgresPatientsRepository struct {
	db *sql.DB
}

// NewPostgresPatientsRepository 创建患者Repository
func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

// 确保实现了接口
var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

const patientColumns = `
	id::text,
	patient_id,
	first_name,
	COALESCE(last_name, '') as last_name,
	COALESCE(gender, '') as gender,
	COALESCE(age, '') as age,
	COALESCE(phone, '') as phone,
	COALESCE(email, '') as email,
	COALESCE(address, '') as address,
	COALESCE(assigned_doctor, '') as assigned_doctor,
	COALESCE(assigned_department, '') as assigned_department,
	COALESCE(assigned_doctors, '[]'::jsonb)::text as assigned_doctors,
	COALESCE(ipd_status, '') as ipd_status,
	COALESCE(ipd_bed_number, 0) as ipd_bed_number,
	COALESCE(date_of_entry::text, '') as date_of_entry,
	COALESCE(created_at::text, '') as created_at,
	COALESCE(last_visit::text, '') as last_visit,
	COALESCE(patient_tag, '') as patient_tag,
	COALESCE(notes, '') as notes`

// GetPatients 获取患者列表（按创建时间倒序）
func (r *PostgresPatientsRepository) GetPatients(ctx context.Context, limit int) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + `
		FROM patients
		ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients, err := scanPatients(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachTransactions(ctx, patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// GetPatientByID 按主键获取患者
func (r *PostgresPatientsRepository) GetPatientByID(ctx context.Context, id string) (*domain.Patient, error) {
	if id == "" {
		return nil, fmt.Errorf("patient id is required")
	}

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	defer rows.Close()

	patients, err := scanPatients(rows)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, fmt.Errorf("patient not found: %s", id)
	}

	if err := r.attachTransactions(ctx, patients); err != nil {
		return nil, err
	}
	return &patients[0], nil
}

// GetPatientsForDateRange 返回在窗口内至少有一条流水的患者（流水本身不在这里
// 过滤，聚合层会按窗口重算）。用 EXISTS 而不是 JOIN：patients/transactions 两表
// 都有 id/created_at，join 会让选择列歧义，而且还得 DISTINCT 去重
func (r *PostgresPatientsRepository) GetPatientsForDateRange(ctx context.Context, start, end string) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + `
		FROM patients
		WHERE EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.patient_ref = patients.id
			  AND COALESCE(t.transaction_date, t.created_at)::date BETWEEN $1::date AND $2::date
		)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients for date range: %w", err)
	}
	defer rows.Close()

	patients, err := scanPatients(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachTransactions(ctx, patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// 允许部分更新的列（入出院回写只碰 ipd_status/ipd_bed_number）
var patientUpdatableColumns = map[string]bool{
	"first_name":          true,
	"last_name":           true,
	"gender":              true,
	"age":                 true,
	"phone":               true,
	"email":               true,
	"address":             true,
	"assigned_doctor":     true,
	"assigned_department": true,
	"ipd_status":          true,
	"ipd_bed_number":      true,
	"patient_tag":         true,
	"notes":               true,
	"last_visit":          true,
}

// UpdatePatient 部分字段更新，白名单外的键忽略
func (r *PostgresPatientsRepository) UpdatePatient(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("patient id is required")
	}

	sets := []string{}
	args := []any{id}
	for col, val := range fields {
		if !patientUpdatableColumns[col] {
			continue
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE patients SET %s, updated_at = NOW() WHERE id = $1`, strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("patient not found: %s", id)
	}
	return nil
}

// DeletePatient 删除患者（流水由外键级联清理）
func (r *PostgresPatientsRepository) DeletePatient(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("patient not found: %s", id)
	}
	return nil
}

// DeleteTransaction 删除单条流水
func (r *PostgresPatientsRepository) DeleteTransaction(ctx context.Context, txnID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, txnID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction not found: %s", txnID)
	}
	return nil
}

// attachTransactions 批量装配流水，避免 N+1 查询
func (r *PostgresPatientsRepository) attachTransactions(ctx context.Context, patients []domain.Patient) error {
	if len(patients) == 0 {
		return nil
	}

	ids := make([]string, 0, len(patients))
	index := map[string]int{}
	for i := range patients {
		ids = append(ids, patients[i].ID)
		index[patients[i].ID] = i
		patients[i].Transactions = []domain.Transaction{}
	}

	query := `
		SELECT
			id::text,
			patient_ref::text,
			amount,
			status,
			COALESCE(transaction_type, '') as transaction_type,
			COALESCE(transaction_date::text, '') as transaction_date,
			COALESCE(created_at::text, '') as created_at,
			COALESCE(payment_mode, '') as payment_mode,
			COALESCE(doctor_id, '') as doctor_id,
			COALESCE(doctor_name, '') as doctor_name,
			COALESCE(department, '') as department,
			COALESCE(description, '') as description,
			COALESCE(discount_type, '') as discount_type,
			COALESCE(discount_value, 0) as discount_value,
			COALESCE(discount_percentage, 0) as discount_percentage
		FROM transactions
		WHERE patient_ref = ANY($1)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txn domain.Transaction
		var patientRef string
		if err := rows.Scan(
			&txn.ID,
			&patientRef,
			&txn.Amount,
			&txn.Status,
			&txn.TransactionType,
			&txn.TransactionDate,
			&txn.CreatedAt,
			&txn.PaymentMode,
			&txn.DoctorID,
			&txn.DoctorName,
			&txn.Department,
			&txn.Description,
			&txn.DiscountType,
			&txn.DiscountValue,
			&txn.DiscountPercentage,
		); err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}
		if i, ok := index[patientRef]; ok {
			patients[i].Transactions = append(patients[i].Transactions, txn)
		}
	}
	return rows.Err()
}

func scanPatients(rows *sql.Rows) ([]domain.Patient, error) {
	var patients []domain.Patient
	for rows.Next() {
		var p domain.Patient
		var assignedDoctorsRaw string
		if err := rows.Scan(
			&p.ID,
			&p.PatientID,
			&p.FirstName,
			&p.LastName,
			&p.Gender,
			&p.Age,
			&p.Phone,
			&p.Email,
			&p.Address,
			&p.AssignedDoctor,
			&p.AssignedDepartment,
			&assignedDoctorsRaw,
			&p.IPDStatus,
			&p.IPDBedNumber,
			&p.DateOfEntry,
			&p.CreatedAt,
			&p.LastVisit,
			&p.PatientTag,
			&p.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		// assigned_doctors 为 JSONB 数组；损坏时退回单字段
		if assignedDoctorsRaw != "" && assignedDoctorsRaw != "[]" {
			_ = json.Unmarshal([]byte(assignedDoctorsRaw), &p.AssignedDoctors)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}
