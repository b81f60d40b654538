package domain

// 交易状态
const (
	TxnCompleted = "COMPLETED"
	TxnCancelled = "CANCELLED"
	TxnPending   = "PENDING"
)

// 折扣类型（结构化字段）
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountAmount     = "AMOUNT"
)

// Transaction 患者财务流水（上游字段命名保持不变）
// Amount 带符号，负数可表示退款；Description 自由文本中可能嵌入折扣信息
type Transaction struct {
	ID              string  `json:"id"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
	TransactionType string  `json:"transaction_type"`
	TransactionDate string  `json:"transaction_date,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	PaymentMode     string  `json:"payment_mode,omitempty"`
	DoctorID        string  `json:"doctor_id,omitempty"`
	DoctorName      string  `json:"doctor_name,omitempty"`
	Department      string  `json:"department,omitempty"`
	Description     string  `json:"description,omitempty"`

	// 结构化折扣字段（如存在则优先于 Description 文本解析）
	DiscountType       string  `json:"discount_type,omitempty"`  // PERCENTAGE | AMOUNT
	DiscountValue      float64 `json:"discount_value,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
}
