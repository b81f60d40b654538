package analytics

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"hospilink-data/internal/domain"
)

// Discount 还原出的折扣信息
type Discount struct {
	OriginalAmount     float64
	DiscountAmount     float64
	DiscountPercentage float64
}

// 历史上折扣信息曾以三种文本格式写进 Description，旧数据只能靠解析还原。
// 读取侧兼容垫片：写入侧应始终填结构化 discount_type/discount_value 字段。
var (
	// "Original Fee: ₹1000 | Discount: 10% discount (₹100)"
	rePercentWithAmount = regexp.MustCompile(`Original Fee:\s*₹([\d,]+(?:\.\d+)?)\s*\|\s*Discount:\s*([\d.]+)%\s*discount\s*\(₹([\d,]+(?:\.\d+)?)\)`)
	// "Original Fee: ₹1000 | Discount: ₹100 discount"
	reFlatAmount = regexp.MustCompile(`Original Fee:\s*₹([\d,]+(?:\.\d+)?)\s*\|\s*Discount:\s*₹([\d,]+(?:\.\d+)?)\s*discount`)
	// legacy: "Original: ₹1000" + "Discount: 10%"
	reLegacyOriginal = regexp.MustCompile(`Original:\s*₹([\d,]+(?:\.\d+)?)`)
	reLegacyPercent  = regexp.MustCompile(`Discount:\s*([\d.]+)%`)
)

// ReconstructDiscount 从交易中还原原价/折扣
// 结构化字段优先于文本解析；收据汇总和 Excel 导出共用这一个函数，
// AMOUNT 型折扣率统一按还原后的原价计算。
// 任何格式都不匹配时回退为"金额即原价、零折扣"，绝不报错。
func ReconstructDiscount(txn domain.Transaction) Discount {
	abs := math.Abs(txn.Amount)

	switch txn.DiscountType {
	case domain.DiscountPercentage:
		if txn.DiscountValue > 0 && txn.DiscountValue < 100 {
			original := abs / (1 - txn.DiscountValue/100)
			return Discount{
				OriginalAmount:     original,
				DiscountAmount:     original - abs,
				DiscountPercentage: txn.DiscountValue,
			}
		}
	case domain.DiscountAmount:
		if txn.DiscountValue > 0 {
			original := abs + txn.DiscountValue
			return Discount{
				OriginalAmount:     original,
				DiscountAmount:     txn.DiscountValue,
				DiscountPercentage: txn.DiscountValue / original * 100,
			}
		}
	}

	// 无结构化类型但带折扣率提示的旧记录
	if txn.DiscountType == "" && txn.DiscountPercentage > 0 && txn.DiscountPercentage < 100 {
		original := abs / (1 - txn.DiscountPercentage/100)
		return Discount{
			OriginalAmount:     original,
			DiscountAmount:     original - abs,
			DiscountPercentage: txn.DiscountPercentage,
		}
	}

	if d, ok := parseDiscountText(txn.Description); ok {
		return d
	}

	return Discount{OriginalAmount: txn.Amount}
}

// parseDiscountText 按历史格式从新到旧依次尝试
func parseDiscountText(description string) (Discount, bool) {
	if description == "" {
		return Discount{}, false
	}

	if m := rePercentWithAmount.FindStringSubmatch(description); m != nil {
		original := parseMoney(m[1])
		percent, _ := strconv.ParseFloat(m[2], 64)
		amount := parseMoney(m[3])
		return Discount{
			OriginalAmount:     original,
			DiscountAmount:     amount,
			DiscountPercentage: percent,
		}, true
	}

	if m := reFlatAmount.FindStringSubmatch(description); m != nil {
		original := parseMoney(m[1])
		amount := parseMoney(m[2])
		d := Discount{OriginalAmount: original, DiscountAmount: amount}
		if original > 0 {
			d.DiscountPercentage = amount / original * 100
		}
		return d, true
	}

	if m := reLegacyOriginal.FindStringSubmatch(description); m != nil {
		original := parseMoney(m[1])
		d := Discount{OriginalAmount: original}
		if p := reLegacyPercent.FindStringSubmatch(description); p != nil {
			percent, _ := strconv.ParseFloat(p[1], 64)
			d.DiscountPercentage = percent
			d.DiscountAmount = original * percent / 100
		}
		return d, true
	}

	return Discount{}, false
}

func parseMoney(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v
}
