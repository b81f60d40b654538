package analytics

import (
	"sort"
	"strings"
)

// ListQuery 列表展示的过滤/排序参数（与日期窗口重算相互独立）
type ListQuery struct {
	Search    string // 姓名/电话/编号/邮箱，大小写不敏感子串
	Gender    string
	Tag       string
	SortBy    string // name | date | visits | spent
	Ascending bool
}

// FilterAndSort 列表展示用的过滤与排序
func FilterAndSort(views []PatientView, q ListQuery) []PatientView {
	out := make([]PatientView, 0, len(views))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	for _, v := range views {
		if search != "" && !matchesSearch(&v, search) {
			continue
		}
		if q.Gender != "" && !strings.EqualFold(v.Gender, q.Gender) {
			continue
		}
		if q.Tag != "" && !strings.EqualFold(patientTag(&v.Patient), q.Tag) {
			continue
		}
		out = append(out, v)
	}

	less := sortLess(q.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return less(&out[i], &out[j])
		}
		return less(&out[j], &out[i])
	})

	return out
}

func matchesSearch(v *PatientView, search string) bool {
	for _, field := range []string{v.FullName(), v.Phone, v.PatientID, v.ID, v.Email} {
		if field != "" && strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// sortLess date 排序用 date_of_entry，缺失回退 created_at
func sortLess(sortBy string) func(a, b *PatientView) bool {
	switch sortBy {
	case "date":
		return func(a, b *PatientView) bool {
			return entryDate(a) < entryDate(b)
		}
	case "visits":
		return func(a, b *PatientView) bool {
			return a.VisitCount < b.VisitCount
		}
	case "spent":
		return func(a, b *PatientView) bool {
			return a.TotalSpent < b.TotalSpent
		}
	default: // name
		return func(a, b *PatientView) bool {
			return strings.ToLower(a.FullName()) < strings.ToLower(b.FullName())
		}
	}
}

func entryDate(v *PatientView) string {
	if v.DateOfEntry != "" {
		return NormalizeDate(v.DateOfEntry)
	}
	return NormalizeDate(v.CreatedAt)
}
