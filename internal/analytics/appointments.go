package analytics

import (
	"encoding/json"
	"strings"
)

// AppointmentsKey 外部系统维护的预约列表键（本服务只读）
const AppointmentsKey = "hospital_appointments"

// Appointment 预约条目（消费方视角，只关心归属患者和状态）
type Appointment struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	Status    string `json:"status"` // pending | confirmed | completed | cancelled
}

// ParseAppointments 解析预约列表 JSON；损坏时按空列表处理（不阻断患者列表）
func ParseAppointments(raw string) []Appointment {
	if raw == "" {
		return nil
	}
	var appts []Appointment
	if err := json.Unmarshal([]byte(raw), &appts); err != nil {
		return nil
	}
	return appts
}

// SuppressPendingAppointments 从主列表中隐藏仍有待就诊预约的患者
func SuppressPendingAppointments(views []PatientView, appts []Appointment) []PatientView {
	if len(appts) == 0 {
		return views
	}

	pending := map[string]bool{}
	for _, a := range appts {
		if strings.EqualFold(a.Status, "pending") {
			pending[a.PatientID] = true
		}
	}
	if len(pending) == 0 {
		return views
	}

	out := make([]PatientView, 0, len(views))
	for _, v := range views {
		if pending[v.ID] || pending[v.PatientID] {
			continue
		}
		out = append(out, v)
	}
	return out
}
