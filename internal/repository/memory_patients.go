package repository

import (
	"context"
	"fmt"
	"sync"

	"hospilink-data/internal/analytics"
	"hospilink-data/internal/domain"
)

// MemoryPatientsRepository 内存实现（DB 未就绪时的联测兜底，及单元测试使用）
type MemoryPatientsRepository struct {
	mu       sync.RWMutex
	patients map[string]*domain.Patient
	order    []string
}

func NewMemoryPatientsRepository() *MemoryPatientsRepository {
	return &MemoryPatientsRepository{patients: map[string]*domain.Patient{}}
}

var _ PatientsRepository = (*MemoryPatientsRepository)(nil)

// Seed 注入测试/联测数据
func (r *MemoryPatientsRepository) Seed(patients ...domain.Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range patients {
		p := patients[i]
		if _, ok := r.patients[p.ID]; !ok {
			r.order = append(r.order, p.ID)
		}
		r.patients[p.ID] = &p
	}
}

func (r *MemoryPatientsRepository) GetPatients(ctx context.Context, limit int) ([]domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Patient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clonePatient(r.patients[id]))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryPatientsRepository) GetPatientByID(ctx context.Context, id string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient not found: %s", id)
	}
	c := clonePatient(p)
	return &c, nil
}

func (r *MemoryPatientsRepository) GetPatientsForDateRange(ctx context.Context, start, end string) ([]domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w := analytics.Window{Start: start, End: end, Bounded: true}
	out := []domain.Patient{}
	for _, id := range r.order {
		p := r.patients[id]
		for _, txn := range p.Transactions {
			d := txn.TransactionDate
			if d == "" {
				d = txn.CreatedAt
			}
			if w.Contains(analytics.NormalizeDate(d)) {
				out = append(out, clonePatient(p))
				break
			}
		}
	}
	return out, nil
}

func (r *MemoryPatientsRepository) UpdatePatient(ctx context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return fmt.Errorf("patient not found: %s", id)
	}
	for col, val := range fields {
		switch col {
		case "ipd_status":
			if s, ok := val.(string); ok {
				p.IPDStatus = s
			}
		case "ipd_bed_number":
			switch n := val.(type) {
			case int:
				p.IPDBedNumber = n
			case float64:
				p.IPDBedNumber = int(n)
			}
		case "patient_tag":
			if s, ok := val.(string); ok {
				p.PatientTag = s
			}
		case "notes":
			if s, ok := val.(string); ok {
				p.Notes = s
			}
		case "last_visit":
			if s, ok := val.(string); ok {
				p.LastVisit = s
			}
		}
	}
	return nil
}

func (r *MemoryPatientsRepository) DeletePatient(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return fmt.Errorf("patient not found: %s", id)
	}
	delete(r.patients, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryPatientsRepository) DeleteTransaction(ctx context.Context, txnID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.patients {
		for i, txn := range p.Transactions {
			if txn.ID == txnID {
				p.Transactions = append(p.Transactions[:i], p.Transactions[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("transaction not found: %s", txnID)
}

func clonePatient(p *domain.Patient) domain.Patient {
	c := *p
	c.Transactions = make([]domain.Transaction, len(p.Transactions))
	copy(c.Transactions, p.Transactions)
	if len(p.AssignedDoctors) > 0 {
		c.AssignedDoctors = make([]domain.AssignedDoctor, len(p.AssignedDoctors))
		copy(c.AssignedDoctors, p.AssignedDoctors)
	}
	return c
}
