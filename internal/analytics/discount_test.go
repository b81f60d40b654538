package analytics

import (
	"testing"

	"hospilink-data/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestReconstructDiscountStructuredPercentage(t *testing.T) {
	d := ReconstructDiscount(domain.Transaction{
		Amount:        900,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
	})

	assert.InDelta(t, 1000, d.OriginalAmount, 0.001)
	assert.InDelta(t, 100, d.DiscountAmount, 0.001)
	assert.InDelta(t, 10, d.DiscountPercentage, 0.001)
}

func TestReconstructDiscountNegativeAmount(t *testing.T) {
	// 退款等负数金额按绝对值还原
	d := ReconstructDiscount(domain.Transaction{
		Amount:        -900,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
	})

	assert.InDelta(t, 1000, d.OriginalAmount, 0.001)
	assert.InDelta(t, 100, d.DiscountAmount, 0.001)
}

func TestReconstructDiscountStructuredAmount(t *testing.T) {
	d := ReconstructDiscount(domain.Transaction{
		Amount:        800,
		DiscountType:  domain.DiscountAmount,
		DiscountValue: 200,
	})

	assert.InDelta(t, 1000, d.OriginalAmount, 0.001)
	assert.InDelta(t, 200, d.DiscountAmount, 0.001)
	// AMOUNT 型折扣率按还原后的原价计算
	assert.InDelta(t, 20, d.DiscountPercentage, 0.001)
}

func TestReconstructDiscountPercentageHint(t *testing.T) {
	d := ReconstructDiscount(domain.Transaction{
		Amount:             450,
		DiscountPercentage: 10,
	})

	assert.InDelta(t, 500, d.OriginalAmount, 0.001)
	assert.InDelta(t, 50, d.DiscountAmount, 0.001)
	assert.InDelta(t, 10, d.DiscountPercentage, 0.001)
}

func TestReconstructDiscountTextFormats(t *testing.T) {
	cases := []struct {
		name        string
		description string
		amount      float64
		want        Discount
	}{
		{
			name:        "percent with amount",
			description: "Consultation | Original Fee: ₹1,000 | Discount: 10% discount (₹100)",
			amount:      900,
			want:        Discount{OriginalAmount: 1000, DiscountAmount: 100, DiscountPercentage: 10},
		},
		{
			name:        "flat amount",
			description: "Original Fee: ₹1000 | Discount: ₹250 discount",
			amount:      750,
			want:        Discount{OriginalAmount: 1000, DiscountAmount: 250, DiscountPercentage: 25},
		},
		{
			name:        "legacy original with percent",
			description: "Original: ₹2,000 Discount: 5%",
			amount:      1900,
			want:        Discount{OriginalAmount: 2000, DiscountAmount: 100, DiscountPercentage: 5},
		},
		{
			name:        "legacy original only",
			description: "Original: ₹500",
			amount:      500,
			want:        Discount{OriginalAmount: 500},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := ReconstructDiscount(domain.Transaction{Amount: tc.amount, Description: tc.description})
			assert.InDelta(t, tc.want.OriginalAmount, d.OriginalAmount, 0.001)
			assert.InDelta(t, tc.want.DiscountAmount, d.DiscountAmount, 0.001)
			assert.InDelta(t, tc.want.DiscountPercentage, d.DiscountPercentage, 0.001)
		})
	}
}

func TestReconstructDiscountStructuredBeatsText(t *testing.T) {
	d := ReconstructDiscount(domain.Transaction{
		Amount:        900,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		Description:   "Original Fee: ₹5000 | Discount: ₹999 discount",
	})

	assert.InDelta(t, 1000, d.OriginalAmount, 0.001)
	assert.InDelta(t, 10, d.DiscountPercentage, 0.001)
}

func TestReconstructDiscountFallback(t *testing.T) {
	// 无任何折扣信息：金额即原价，零折扣，绝不报错
	d := ReconstructDiscount(domain.Transaction{Amount: 350, Description: "X-Ray chest"})
	assert.Equal(t, Discount{OriginalAmount: 350}, d)

	// 越界的折扣率视为无折扣信息
	d = ReconstructDiscount(domain.Transaction{
		Amount:        350,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 100,
	})
	assert.Equal(t, Discount{OriginalAmount: 350}, d)
}
