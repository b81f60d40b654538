package analytics

import (
	"sort"
	"strings"

	"hospilink-data/internal/domain"
)

// NoConsultations 窗口内无就诊时占位行的日期列取值
const NoConsultations = "No consultations in date range"

// ConsultationRow Excel 导出的一行（同一次就诊的多条流水已按就诊键合并）
type ConsultationRow struct {
	PatientID        string
	FirstName        string
	LastName         string
	Phone            string
	ConsultationDate string
	DoctorName       string
	Department       string
	Amount           float64
	ConsultationType string
	Gender           string
	Age              string
	Address          string
	PatientTag       string
	TotalSpent       float64
	RegistrationDate string
}

// consultationKey 就诊去重键：date|doctor|department
// 同键交易合并为一行，金额求和（同一次就诊的多条收费项折叠）
func consultationKey(date, doctor, department string) string {
	return date + "|" + doctor + "|" + department
}

// BuildConsultationRows 为每个可见患者生成导出行
// 窗口内零就诊的患者仍然产出恰好一条占位行，保证患者不会从导出中静默消失。
// 行最终按就诊日期倒序排列（占位行排在最后）。
func BuildConsultationRows(views []PatientView) []ConsultationRow {
	rows := make([]ConsultationRow, 0, len(views))

	for i := range views {
		v := &views[i]
		base := ConsultationRow{
			PatientID:        v.PatientID,
			FirstName:        v.FirstName,
			LastName:         v.LastName,
			Phone:            v.Phone,
			Gender:           v.Gender,
			Age:              v.Age,
			Address:          v.Address,
			PatientTag:       patientTag(&v.Patient),
			TotalSpent:       v.TotalSpent,
			RegistrationDate: registrationDate(&v.Patient),
		}

		if len(v.Transactions) == 0 {
			row := base
			row.ConsultationDate = NoConsultations
			rows = append(rows, row)
			continue
		}

		merged := map[string]*ConsultationRow{}
		order := []string{}
		for _, txn := range v.Transactions {
			doctor, department := resolveDoctor(txn, &v.Patient)
			date := txnDate(txn)
			key := consultationKey(date, doctor, department)

			if row, ok := merged[key]; ok {
				row.Amount += txn.Amount
				continue
			}
			row := base
			row.ConsultationDate = date
			row.DoctorName = doctor
			row.Department = department
			row.Amount = txn.Amount
			row.ConsultationType = txn.TransactionType
			merged[key] = &row
			order = append(order, key)
		}
		for _, key := range order {
			rows = append(rows, *merged[key])
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return sortableDate(rows[i].ConsultationDate) > sortableDate(rows[j].ConsultationDate)
	})

	return rows
}

// resolveDoctor 医生/科室解析兜底链：交易字段 → "Name - Dept" 组合串拆分 →
// 患者的主治医生/科室 → "General"
func resolveDoctor(txn domain.Transaction, p *domain.Patient) (doctor, department string) {
	doctor = strings.TrimSpace(txn.DoctorName)
	department = strings.TrimSpace(txn.Department)

	if doctor != "" && department == "" {
		if name, dept, ok := splitCombined(doctor); ok {
			doctor, department = name, dept
		}
	}

	if doctor == "" || department == "" {
		pd, pdept := p.PrimaryDoctor()
		if doctor == "" {
			doctor = strings.TrimSpace(pd)
		}
		if department == "" {
			department = strings.TrimSpace(pdept)
		}
	}

	if doctor == "" {
		doctor = "General"
	}
	if department == "" {
		department = "General"
	}
	return doctor, department
}

// splitCombined 拆 "Dr. Name - Department" 组合串
func splitCombined(s string) (name, dept string, ok bool) {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	name = strings.TrimSpace(parts[0])
	dept = strings.TrimSpace(parts[1])
	return name, dept, name != "" && dept != ""
}

// patientTag 新字段优先，回退 legacy notes
func patientTag(p *domain.Patient) string {
	if p.PatientTag != "" {
		return p.PatientTag
	}
	return p.Notes
}

func registrationDate(p *domain.Patient) string {
	if p.DateOfEntry != "" {
		return NormalizeDate(p.DateOfEntry)
	}
	if p.CreatedAt != "" {
		return NormalizeDate(p.CreatedAt)
	}
	return ""
}

// sortableDate 占位行日期不可解析，倒序时排到最后
func sortableDate(d string) string {
	if reISODate.MatchString(d) {
		return d
	}
	return ""
}
