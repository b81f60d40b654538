package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hospilink-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresBillsRepository OPD 账单Repository实现
type PostgresBillsRepository struct {
	db *sql.DB
}

func NewPostgresBillsRepository(db *sql.DB) *PostgresBillsRepository {
	return &PostgresBillsRepository{db: db}
}

var _ BillsRepository = (*PostgresBillsRepository)(nil)

const billColumns = `
	bill_id::text,
	bill_number,
	patient_ref::text,
	COALESCE(items, '[]'::jsonb)::text as items,
	subtotal,
	discount,
	total,
	COALESCE(payment_mode, '') as payment_mode,
	status,
	COALESCE(staff, '') as staff,
	COALESCE(notes, '') as notes,
	created_at,
	updated_at`

// ListBills 按患者列出账单（patientID 为空表示全部）
func (r *PostgresBillsRepository) ListBills(ctx context.Context, patientID string) ([]domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM opd_bills`
	args := []any{}
	if patientID != "" {
		query += ` WHERE patient_ref = $1`
		args = append(args, patientID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

// GetBill 按主键获取账单
func (r *PostgresBillsRepository) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+billColumns+` FROM opd_bills WHERE bill_id = $1`, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("bill not found: %s", billID)
	}
	return scanBill(rows)
}

// CreateBill 新建账单（bill_id/时间戳由仓库填充）
func (r *PostgresBillsRepository) CreateBill(ctx context.Context, bill *domain.Bill) error {
	if bill.BillID == "" {
		bill.BillID = uuid.NewString()
	}
	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now
	if bill.Status == "" {
		bill.Status = "PENDING"
	}

	itemsJSON, err := json.Marshal(bill.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal bill items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO opd_bills
			(bill_id, bill_number, patient_ref, items, subtotal, discount, total,
			 payment_mode, status, staff, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		bill.BillID,
		bill.BillNumber,
		bill.PatientID,
		string(itemsJSON),
		bill.Subtotal,
		bill.Discount,
		bill.Total,
		bill.PaymentMode,
		bill.Status,
		bill.Staff,
		bill.Notes,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

var billUpdatableColumns = map[string]bool{
	"payment_mode": true,
	"status":       true,
	"staff":        true,
	"notes":        true,
	"subtotal":     true,
	"discount":     true,
	"total":        true,
}

// UpdateBill 部分字段更新
func (r *PostgresBillsRepository) UpdateBill(ctx context.Context, billID string, fields map[string]any) error {
	sets := []string{}
	args := []any{billID}
	for col, val := range fields {
		if !billUpdatableColumns[col] {
			continue
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE opd_bills SET %s, updated_at = NOW() WHERE bill_id = $1`, strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("bill not found: %s", billID)
	}
	return nil
}

// DeleteBill 删除账单
func (r *PostgresBillsRepository) DeleteBill(ctx context.Context, billID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM opd_bills WHERE bill_id = $1`, billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("bill not found: %s", billID)
	}
	return nil
}

func scanBill(rows *sql.Rows) (*domain.Bill, error) {
	var bill domain.Bill
	var itemsRaw string
	if err := rows.Scan(
		&bill.BillID,
		&bill.BillNumber,
		&bill.PatientID,
		&itemsRaw,
		&bill.Subtotal,
		&bill.Discount,
		&bill.Total,
		&bill.PaymentMode,
		&bill.Status,
		&bill.Staff,
		&bill.Notes,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}
	bill.Items = []domain.BillItem{}
	if itemsRaw != "" && itemsRaw != "[]" {
		_ = json.Unmarshal([]byte(itemsRaw), &bill.Items)
	}
	return &bill, nil
}
