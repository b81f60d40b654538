package analytics

import (
	"strings"

	"hospilink-data/internal/domain"
)

// 计入就诊次数的交易类型
var visitTypes = map[string]bool{
	"ENTRY_FEE":    true,
	"CONSULTATION": true,
	"LAB_TEST":     true,
	"XRAY":         true,
	"PROCEDURE":    true,
}

// PatientView 窗口内重算后的患者视图（派生量，随窗口变化重算，从不持久化）
// Transactions 已替换为窗口内的存活集，下游（历史、收据）只会看到窗口内交易。
type PatientView struct {
	domain.Patient

	TotalSpent float64 `json:"totalSpent"`
	VisitCount int     `json:"visitCount"`
}

// RecomputeWindow 对每个患者在日期窗口内重算营收/就诊数/最近就诊
//
//  1. 丢弃 CANCELLED 交易
//  2. 窗口模式非 all 时丢弃窗口外交易（闭区间，日期先归一化）
//  3. ORTHO + DR. HEMANT 的营收豁免：totalSpent 强制为 0
//  4. visitCount 只统计挂号/诊察/检验/放射/处置类交易
//  5. lastVisit 取存活交易的最大日期，否则回退患者原有 lastVisit/created_at
//  6. 窗口模式非 all 时，无存活交易的患者整体从结果集剔除
func RecomputeWindow(patients []domain.Patient, rng DateRange, w Window) []PatientView {
	views := make([]PatientView, 0, len(patients))

	for _, p := range patients {
		surviving := make([]domain.Transaction, 0, len(p.Transactions))
		for _, txn := range p.Transactions {
			if strings.EqualFold(txn.Status, domain.TxnCancelled) {
				continue
			}
			if rng != RangeAll && !w.Contains(txnDate(txn)) {
				continue
			}
			surviving = append(surviving, txn)
		}

		if rng != RangeAll && len(surviving) == 0 {
			continue
		}

		view := PatientView{Patient: p}
		view.Transactions = surviving

		if !revenueExcluded(&p) {
			for _, txn := range surviving {
				view.TotalSpent += txn.Amount
			}
		}

		for _, txn := range surviving {
			if visitTypes[strings.ToUpper(txn.TransactionType)] {
				view.VisitCount++
			}
		}

		view.LastVisit = lastVisit(&p, surviving)

		views = append(views, view)
	}

	return views
}

// revenueExcluded 硬编码的营收豁免：ORTHO 科 DR. HEMANT 的患者不计营收
func revenueExcluded(p *domain.Patient) bool {
	doctor, department := p.PrimaryDoctor()
	if !strings.EqualFold(strings.TrimSpace(department), "ORTHO") {
		return false
	}
	d := normalizeName(doctor)
	return strings.HasPrefix(d, "DR. HEMANT") || strings.HasPrefix(d, "DR HEMANT")
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// txnDate 交易日期字段不保证齐全：transaction_date 优先，回退 created_at
func txnDate(txn domain.Transaction) string {
	if txn.TransactionDate != "" {
		return NormalizeDate(txn.TransactionDate)
	}
	return NormalizeDate(txn.CreatedAt)
}

func lastVisit(p *domain.Patient, surviving []domain.Transaction) string {
	last := ""
	for _, txn := range surviving {
		if d := txnDate(txn); d > last {
			last = d
		}
	}
	if last != "" {
		return last
	}
	if p.LastVisit != "" {
		return NormalizeDate(p.LastVisit)
	}
	if p.CreatedAt != "" {
		return NormalizeDate(p.CreatedAt)
	}
	return ""
}
