package domain

import "time"

// BillItem OPD 账单条目
type BillItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Bill OPD 账单记录
type Bill struct {
	BillID      string     `json:"bill_id"`
	BillNumber  string     `json:"bill_number"`
	PatientID   string     `json:"patient_id"`
	Items       []BillItem `json:"items"`
	Subtotal    float64    `json:"subtotal"`
	Discount    float64    `json:"discount"`
	Total       float64    `json:"total"`
	PaymentMode string     `json:"payment_mode,omitempty"`
	Status      string     `json:"status"` // PAID | PENDING | CANCELLED
	Staff       string     `json:"staff,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
