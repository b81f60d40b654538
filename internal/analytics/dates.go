package analytics

import (
	"fmt"
	"regexp"
	"time"
)

// DateRange 日期窗口模式
type DateRange string

const (
	RangeAll    DateRange = "all"
	RangeToday  DateRange = "today"
	RangeWeek   DateRange = "week"
	RangeMonth  DateRange = "month"
	RangeCustom DateRange = "custom"
)

// Window 归一化后的日期窗口（闭区间，YYYY-MM-DD）
// Bounded=false 表示不过滤（dateRange=all）
type Window struct {
	Start   string
	End     string
	Bounded bool
}

var (
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDMYDate = regexp.MustCompile(`^(\d{2})[-/](\d{2})[-/](\d{4})$`)
)

// NormalizeDate 上游日期格式不统一，全部归一化为 YYYY-MM-DD 再参与比较
// 优先级：time.Time → 本地日历字段；带 T 的 ISO 串 → 取 T 前缀；
// 已是 YYYY-MM-DD → 原样；DD-MM-YYYY / DD/MM/YYYY → 重排；
// 其它尝试通用解析，全部失败回退为今天。
func NormalizeDate(value any) string {
	return normalizeDateAt(value, time.Now())
}

func normalizeDateAt(value any, now time.Time) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format("2006-01-02")
	case *time.Time:
		if v != nil {
			return v.Format("2006-01-02")
		}
	case string:
		if v == "" {
			break
		}
		for i := 0; i < len(v); i++ {
			if v[i] == 'T' {
				candidate := v[:i]
				if reISODate.MatchString(candidate) {
					return candidate
				}
				break
			}
		}
		if reISODate.MatchString(v) {
			return v
		}
		if m := reDMYDate.FindStringSubmatch(v); m != nil {
			return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006/01/02", "Jan 2, 2006", "2 Jan 2006"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return now.Format("2006-01-02")
}

// ResolveWindow 根据窗口模式计算闭区间边界
// week = 最近 7 个自然日（含今天），month = 本月 1 日至今天
func ResolveWindow(rng DateRange, start, end string, now time.Time) Window {
	today := now.Format("2006-01-02")
	switch rng {
	case RangeToday:
		return Window{Start: today, End: today, Bounded: true}
	case RangeWeek:
		return Window{Start: now.AddDate(0, 0, -6).Format("2006-01-02"), End: today, Bounded: true}
	case RangeMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: first.Format("2006-01-02"), End: today, Bounded: true}
	case RangeCustom:
		return Window{Start: normalizeDateAt(start, now), End: normalizeDateAt(end, now), Bounded: true}
	default:
		return Window{}
	}
}

// Contains 日期是否落在窗口内（闭区间；YYYY-MM-DD 字符串可直接按字典序比较）
func (w Window) Contains(date string) bool {
	if !w.Bounded {
		return true
	}
	return date >= w.Start && date <= w.End
}

// Label 导出文件名中嵌入的窗口标签
func (w Window) Label(rng DateRange) string {
	switch rng {
	case RangeAll:
		return "all-time"
	case RangeCustom:
		return w.Start + "_to_" + w.End
	default:
		return string(rng)
	}
}
