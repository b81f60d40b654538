package analytics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "patient-consultations-today.xlsx", ExportFileName("today"))
	assert.Equal(t, "patient-consultations-2025-08-01_to_2025-08-15.xlsx", ExportFileName("2025-08-01_to_2025-08-15"))
}

func TestGenerateConsultationExport(t *testing.T) {
	rows := []ConsultationRow{
		{
			PatientID: "P-001", FirstName: "Asha", LastName: "Verma", Phone: "9876543210",
			ConsultationDate: "2025-08-31", DoctorName: "Dr. Rao", Department: "Medicine",
			Amount: 800, ConsultationType: "CONSULTATION", Gender: "Female", Age: "34",
			Address: "Jaipur", PatientTag: "Camp", TotalSpent: 123456.5, RegistrationDate: "2025-08-01",
		},
		{
			PatientID: "P-002", FirstName: "Ravi", LastName: "Sharma",
			ConsultationDate: NoConsultations, TotalSpent: 0, RegistrationDate: "2025-08-10",
		},
	}

	data, err := GenerateConsultationExport(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Consultations")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, ConsultationExportHeader, got[0])

	// 日期转为展示格式，金额带印度位分组
	assert.Equal(t, "P-001", got[1][0])
	assert.Equal(t, "31/08/2025", got[1][4])
	assert.Equal(t, "₹800.00", got[1][7])
	assert.Equal(t, "₹1,23,456.50", got[1][13])
	assert.Equal(t, "01/08/2025", got[1][14])

	// 占位行日期原样保留
	assert.Equal(t, NoConsultations, got[2][4])
}

func TestGenerateConsultationExportEmpty(t *testing.T) {
	data, err := GenerateConsultationExport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Consultations")
	require.NoError(t, err)
	require.Len(t, got, 1) // 只有表头
	assert.Equal(t, ConsultationExportHeader, got[0])
}
