package analytics

import (
	"fmt"
	"strings"
)

// FormatCurrency 按印度位分组格式化卢比金额（₹1,23,456.50）
func FormatCurrency(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	intPart := s[:len(s)-3]
	decPart := s[len(s)-2:]

	grouped := groupIndian(intPart)
	if neg {
		return "-₹" + grouped + "." + decPart
	}
	return "₹" + grouped + "." + decPart
}

// groupIndian 印度分组：最后三位一组，之前每两位一组
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	parts = append(parts, tail)
	return strings.Join(parts, ",")
}

// FormatDate 展示用日期（DD/MM/YYYY），输入先归一化
func FormatDate(value any) string {
	d := NormalizeDate(value)
	// d 形如 YYYY-MM-DD
	return d[8:10] + "/" + d[5:7] + "/" + d[0:4]
}
