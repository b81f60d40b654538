package analytics

import (
	"testing"

	"hospilink-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppointments(t *testing.T) {
	appts := ParseAppointments(`[{"id":"a1","patient_id":"1","status":"pending"}]`)
	require.Len(t, appts, 1)
	assert.Equal(t, "pending", appts[0].Status)

	assert.Nil(t, ParseAppointments(""))
	assert.Nil(t, ParseAppointments("{broken"))
}

func TestSuppressPendingAppointments(t *testing.T) {
	views := []PatientView{
		{Patient: domain.Patient{ID: "1", PatientID: "P-001"}},
		{Patient: domain.Patient{ID: "2", PatientID: "P-002"}},
		{Patient: domain.Patient{ID: "3", PatientID: "P-003"}},
	}

	appts := []Appointment{
		{ID: "a1", PatientID: "1", Status: "PENDING"},   // 大小写不敏感
		{ID: "a2", PatientID: "P-003", Status: "pending"}, // 业务编号也可匹配
		{ID: "a3", PatientID: "2", Status: "completed"},
	}

	out := SuppressPendingAppointments(views, appts)
	require.Len(t, out, 1)
	assert.Equal(t, "2", out[0].ID)

	// 无 pending 预约时原样返回
	assert.Len(t, SuppressPendingAppointments(views, []Appointment{{PatientID: "1", Status: "completed"}}), 3)
	assert.Len(t, SuppressPendingAppointments(views, nil), 3)
}
