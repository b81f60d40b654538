package analytics

import (
	"math"

	"hospilink-data/internal/domain"
)

// ReceiptCharge 收据明细行（原价/折扣由 ReconstructDiscount 统一还原）
type ReceiptCharge struct {
	Description        string  `json:"description"`
	TransactionType    string  `json:"transaction_type"`
	OriginalAmount     float64 `json:"original_amount"`
	DiscountAmount     float64 `json:"discount_amount"`
	DiscountPercentage float64 `json:"discount_percentage"`
	NetAmount          float64 `json:"net_amount"`
	PaymentMode        string  `json:"payment_mode,omitempty"`
	Date               string  `json:"date"`
}

// ReceiptTotals 收据合计
type ReceiptTotals struct {
	GrossAmount    float64 `json:"gross_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	NetAmount      float64 `json:"net_amount"`
}

// BuildReceiptCharges 由窗口内交易生成打印收据的明细与合计
// 折扣只有一条还原路径：收据和导出不允许各算各的折扣率。
func BuildReceiptCharges(txns []domain.Transaction) ([]ReceiptCharge, ReceiptTotals) {
	charges := make([]ReceiptCharge, 0, len(txns))
	var totals ReceiptTotals

	for _, txn := range txns {
		d := ReconstructDiscount(txn)
		charge := ReceiptCharge{
			Description:        txn.Description,
			TransactionType:    txn.TransactionType,
			OriginalAmount:     d.OriginalAmount,
			DiscountAmount:     d.DiscountAmount,
			DiscountPercentage: d.DiscountPercentage,
			NetAmount:          txn.Amount,
			PaymentMode:        txn.PaymentMode,
			Date:               txnDate(txn),
		}
		charges = append(charges, charge)

		totals.GrossAmount += math.Abs(d.OriginalAmount)
		totals.DiscountAmount += d.DiscountAmount
		totals.NetAmount += txn.Amount
	}

	return charges, totals
}
