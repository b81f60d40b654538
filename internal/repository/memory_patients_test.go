package repository

import (
	"context"
	"testing"

	"hospilink-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRepo() *MemoryPatientsRepository {
	repo := NewMemoryPatientsRepository()
	repo.Seed(
		domain.Patient{
			ID: "p1", PatientID: "P-001", FirstName: "Asha",
			Transactions: []domain.Transaction{
				{ID: "t1", Amount: 500, Status: domain.TxnCompleted, TransactionType: "CONSULTATION", TransactionDate: "2025-08-31"},
			},
		},
		domain.Patient{
			ID: "p2", PatientID: "P-002", FirstName: "Ravi",
			Transactions: []domain.Transaction{
				{ID: "t2", Amount: 300, Status: domain.TxnCompleted, TransactionType: "LAB_TEST", TransactionDate: "2025-07-15"},
			},
		},
	)
	return repo
}

func TestMemoryGetPatientsPreservesOrder(t *testing.T) {
	repo := seededRepo()

	patients, err := repo.GetPatients(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "p1", patients[0].ID)

	limited, err := repo.GetPatients(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMemoryGetPatientsReturnsCopies(t *testing.T) {
	repo := seededRepo()

	patients, _ := repo.GetPatients(context.Background(), 0)
	patients[0].Transactions[0].Amount = 999999

	fresh, err := repo.GetPatientByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.InDelta(t, 500, fresh.Transactions[0].Amount, 0.001)
}

func TestMemoryGetPatientsForDateRange(t *testing.T) {
	repo := seededRepo()

	patients, err := repo.GetPatientsForDateRange(context.Background(), "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "p1", patients[0].ID)
}

func TestMemoryUpdatePatient(t *testing.T) {
	repo := seededRepo()

	err := repo.UpdatePatient(context.Background(), "p1", map[string]any{
		"ipd_status":     "ADMITTED",
		"ipd_bed_number": 7,
		"unknown_column": "ignored",
	})
	require.NoError(t, err)

	p, _ := repo.GetPatientByID(context.Background(), "p1")
	assert.Equal(t, "ADMITTED", p.IPDStatus)
	assert.Equal(t, 7, p.IPDBedNumber)

	assert.ErrorContains(t, repo.UpdatePatient(context.Background(), "missing", nil), "patient not found")
}

func TestMemoryDeleteTransaction(t *testing.T) {
	repo := seededRepo()

	require.NoError(t, repo.DeleteTransaction(context.Background(), "t1"))
	p, _ := repo.GetPatientByID(context.Background(), "p1")
	assert.Empty(t, p.Transactions)

	assert.ErrorContains(t, repo.DeleteTransaction(context.Background(), "t1"), "transaction not found")
}

func TestMemoryDeletePatient(t *testing.T) {
	repo := seededRepo()

	require.NoError(t, repo.DeletePatient(context.Background(), "p2"))
	patients, _ := repo.GetPatients(context.Background(), 0)
	require.Len(t, patients, 1)
	assert.Equal(t, "p1", patients[0].ID)
}
