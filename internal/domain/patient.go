package domain

// AssignedDoctor 患者的主治医生分配（新结构，支持多医生）
type AssignedDoctor struct {
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	IsPrimary  bool   `json:"isPrimary"`
}

// Patient 患者目录实体（消费方视角，字段命名与上游保持一致）
type Patient struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"` // 业务编号（如 "P-000123"）
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender,omitempty"`
	Age       string `json:"age,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`

	AssignedDoctor     string           `json:"assigned_doctor,omitempty"`
	AssignedDepartment string           `json:"assigned_department,omitempty"`
	AssignedDoctors    []AssignedDoctor `json:"assigned_doctors,omitempty"`

	IPDStatus    string `json:"ipd_status,omitempty"` // ADMITTED | DISCHARGED | ""
	IPDBedNumber int    `json:"ipd_bed_number,omitempty"`

	DateOfEntry string `json:"date_of_entry,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	LastVisit   string `json:"lastVisit,omitempty"`

	PatientTag string `json:"patient_tag,omitempty"`
	Notes      string `json:"notes,omitempty"` // legacy tag 字段

	Transactions []Transaction `json:"transactions"`
}

// FullName 展示用姓名
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// PrimaryDoctor 解析当前主治医生/科室
// 优先 assigned_doctors 中 isPrimary 的条目，回退到旧的单字段
func (p *Patient) PrimaryDoctor() (name, department string) {
	for _, d := range p.AssignedDoctors {
		if d.IsPrimary {
			return d.Name, d.Department
		}
	}
	if len(p.AssignedDoctors) > 0 {
		return p.AssignedDoctors[0].Name, p.AssignedDoctors[0].Department
	}
	return p.AssignedDoctor, p.AssignedDepartment
}

// Doctor 医生目录条目
type Doctor struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Department string  `json:"department"`
	Fee        float64 `json:"fee,omitempty"`
}
