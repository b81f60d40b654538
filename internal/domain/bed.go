package domain

import (
	"fmt"
	"time"
)

// BedStatus 床位占用状态
type BedStatus string

const (
	BedVacant   BedStatus = "vacant"
	BedOccupied BedStatus = "occupied"
)

// TATStatus TAT 倒计时状态机状态
// 合法迁移：idle → running → {completed, expired} → idle
type TATStatus string

const (
	TATIdle      TATStatus = "idle"
	TATRunning   TATStatus = "running"
	TATCompleted TATStatus = "completed"
	TATExpired   TATStatus = "expired"
)

// TATDurationSeconds TAT 护理评估时限（30分钟）
const TATDurationSeconds = 1800

// BedCount IPD 病区固定床位数
const BedCount = 40

// FormKind 床旁临床表单类型
type FormKind string

const (
	FormConsent        FormKind = "consent"
	FormClinicalRecord FormKind = "clinicalRecord"
	FormProgressSheet  FormKind = "progressSheet"
	FormNursesOrders   FormKind = "nursesOrders"
	FormTATAssessment  FormKind = "tatAssessment"
)

// NursesOrderKind 护理医嘱束的子表单类型
// 这些子表单共享一条 nursesOrders 提交记录（按子类型合并，不覆盖）
type NursesOrderKind string

const (
	NOVitalChart      NursesOrderKind = "vitalChart"
	NOIntakeOutput    NursesOrderKind = "intakeOutput"
	NOMedicationChart NursesOrderKind = "medicationChart"
	NOCarePlan        NursesOrderKind = "carePlan"
	NODiabeticChart   NursesOrderKind = "diabeticChart"
	NONursesNotes     NursesOrderKind = "nursesNotes"
)

// IsNursesOrderKind 判断表单类型是否属于护理医嘱束
func IsNursesOrderKind(kind FormKind) bool {
	switch NursesOrderKind(kind) {
	case NOVitalChart, NOIntakeOutput, NOMedicationChart,
		NOCarePlan, NODiabeticChart, NONursesNotes:
		return true
	}
	return false
}

// FormSubmission 一次表单提交记录
type FormSubmission struct {
	Payload     map[string]any `json:"payload"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// ConsultantNote 会诊医师备注（只追加）
type ConsultantNote struct {
	NoteID    string    `json:"note_id"`
	Note      string    `json:"note"`
	AddedBy   string    `json:"added_by"`
	Timestamp time.Time `json:"timestamp"`
}

// AdmittedPatient 入住患者引用（Bed 仅保存展示所需字段）
type AdmittedPatient struct {
	PatientID string `json:"patient_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender,omitempty"`
	Age       string `json:"age,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Bed IPD 床位记录
// status = occupied 当且仅当 patient 非空
type Bed struct {
	BedID               string           `json:"bed_id"` // "bed-<n>"，创建后不变
	Number              int              `json:"number"`  // 1..40，展示键
	Status              BedStatus        `json:"status"`
	Patient             *AdmittedPatient `json:"patient,omitempty"`
	AdmissionDate       *time.Time       `json:"admission_date,omitempty"`
	IPDNumber           string           `json:"ipd_number,omitempty"` // IPD-<YYYYMMDD>-<seq3>
	TATStatus           TATStatus        `json:"tat_status"`
	TATStartTime        *time.Time       `json:"tat_start_time,omitempty"`
	TATRemainingSeconds int              `json:"tat_remaining_seconds"`
	ConsultantNotes     []ConsultantNote `json:"consultant_notes"`

	// Forms 按表单类型记录提交（护理医嘱束按子类型合并进同一条记录的 Payload）
	Forms map[FormKind]FormSubmission `json:"forms,omitempty"`

	// PendingSync 远端入出院状态回写失败后置位，等待后续对账
	PendingSync bool `json:"pending_sync,omitempty"`
}

// NewVacantBed 创建编号为 n 的空床位（所有入住期字段为零值）
func NewVacantBed(n int) Bed {
	return Bed{
		BedID:               fmt.Sprintf("bed-%d", n),
		Number:              n,
		Status:              BedVacant,
		TATStatus:           TATIdle,
		TATRemainingSeconds: TATDurationSeconds,
		ConsultantNotes:     []ConsultantNote{},
	}
}

// FormSubmitted 表单是否已提交
func (b *Bed) FormSubmitted(kind FormKind) bool {
	if b.Forms == nil {
		return false
	}
	_, ok := b.Forms[kind]
	return ok
}
