package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hospilink-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryDoctorsRepository 医生目录内存实现（DB 未就绪时的兜底）
type MemoryDoctorsRepository struct {
	mu      sync.RWMutex
	doctors []domain.Doctor
}

func NewMemoryDoctorsRepository() *MemoryDoctorsRepository {
	return &MemoryDoctorsRepository{}
}

var _ DoctorsRepository = (*MemoryDoctorsRepository)(nil)

func (r *MemoryDoctorsRepository) Seed(doctors ...domain.Doctor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctors = append(r.doctors, doctors...)
}

func (r *MemoryDoctorsRepository) GetAllDoctors(ctx context.Context) ([]domain.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Doctor, len(r.doctors))
	copy(out, r.doctors)
	return out, nil
}

// MemoryBillsRepository OPD 账单内存实现
type MemoryBillsRepository struct {
	mu    sync.RWMutex
	bills map[string]*domain.Bill
	order []string
}

func NewMemoryBillsRepository() *MemoryBillsRepository {
	return &MemoryBillsRepository{bills: map[string]*domain.Bill{}}
}

var _ BillsRepository = (*MemoryBillsRepository)(nil)

func (r *MemoryBillsRepository) ListBills(ctx context.Context, patientID string) ([]domain.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Bill{}
	for _, id := range r.order {
		b := r.bills[id]
		if patientID != "" && b.PatientID != patientID {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *MemoryBillsRepository) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bills[billID]
	if !ok {
		return nil, fmt.Errorf("bill not found: %s", billID)
	}
	c := *b
	return &c, nil
}

func (r *MemoryBillsRepository) CreateBill(ctx context.Context, bill *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bill.BillID == "" {
		bill.BillID = uuid.NewString()
	}
	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now
	if bill.Status == "" {
		bill.Status = "PENDING"
	}
	c := *bill
	r.bills[bill.BillID] = &c
	r.order = append(r.order, bill.BillID)
	return nil
}

func (r *MemoryBillsRepository) UpdateBill(ctx context.Context, billID string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[billID]
	if !ok {
		return fmt.Errorf("bill not found: %s", billID)
	}
	for col, val := range fields {
		switch col {
		case "status":
			if s, ok := val.(string); ok {
				b.Status = s
			}
		case "payment_mode":
			if s, ok := val.(string); ok {
				b.PaymentMode = s
			}
		case "staff":
			if s, ok := val.(string); ok {
				b.Staff = s
			}
		case "notes":
			if s, ok := val.(string); ok {
				b.Notes = s
			}
		}
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryBillsRepository) DeleteBill(ctx context.Context, billID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[billID]; !ok {
		return fmt.Errorf("bill not found: %s", billID)
	}
	delete(r.bills, billID)
	for i, id := range r.order {
		if id == billID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
