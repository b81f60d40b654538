package repository

import (
	"context"

	"hospilink-data/internal/domain"
)

// PatientsRepository 患者目录（含财务流水）数据访问接口
type PatientsRepository interface {
	// GetPatients 返回最多 limit 个患者（limit<=0 表示不限）
	GetPatients(ctx context.Context, limit int) ([]domain.Patient, error)
	GetPatientByID(ctx context.Context, id string) (*domain.Patient, error)
	// GetPatientsForDateRange 返回在 [start, end]（YYYY-MM-DD）内有流水的患者
	GetPatientsForDateRange(ctx context.Context, start, end string) ([]domain.Patient, error)
	// UpdatePatient 部分字段更新（白名单之外的键被忽略）
	UpdatePatient(ctx context.Context, id string, fields map[string]any) error
	DeletePatient(ctx context.Context, id string) error
	// DeleteTransaction 先远端确认再让本地可见（与入出院回写不同，此路径不做 best-effort）
	DeleteTransaction(ctx context.Context, txnID string) error
}

// DoctorsRepository 医生目录
type DoctorsRepository interface {
	GetAllDoctors(ctx context.Context) ([]domain.Doctor, error)
}

// BillsRepository OPD 账单 CRUD
type BillsRepository interface {
	ListBills(ctx context.Context, patientID string) ([]domain.Bill, error)
	GetBill(ctx context.Context, billID string) (*domain.Bill, error)
	CreateBill(ctx context.Context, bill *domain.Bill) error
	UpdateBill(ctx context.Context, billID string, fields map[string]any) error
	DeleteBill(ctx context.Context, billID string) error
}
