package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"hospilink-data/internal/analytics"
	"hospilink-data/internal/domain"
	"hospilink-data/internal/repository"
	"hospilink-data/internal/store"

	"go.uber.org/zap"
)

// PatientHandler 患者列表/营收汇总/导出 API
type PatientHandler struct {
	patients repository.PatientsRepository
	doctors  repository.DoctorsRepository
	kv       store.KV
	logger   *zap.Logger
}

func NewPatientHandler(patients repository.PatientsRepository, doctors repository.DoctorsRepository, kv store.KV, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, doctors: doctors, kv: kv, logger: logger}
}

// parseQuery 日期窗口 + 列表过滤参数
func parseQuery(r *http.Request) (analytics.DateRange, analytics.Window, analytics.ListQuery) {
	q := r.URL.Query()

	rng := analytics.DateRange(q.Get("dateRange"))
	switch rng {
	case analytics.RangeToday, analytics.RangeWeek, analytics.RangeMonth, analytics.RangeCustom:
	default:
		rng = analytics.RangeAll
	}
	w := analytics.ResolveWindow(rng, q.Get("startDate"), q.Get("endDate"), time.Now())

	lq := analytics.ListQuery{
		Search:    q.Get("search"),
		Gender:    q.Get("gender"),
		Tag:       q.Get("tag"),
		SortBy:    q.Get("sortBy"),
		Ascending: q.Get("order") == "asc",
	}
	return rng, w, lq
}

// loadViews 取数 + 窗口重算 + 预约抑制。有界窗口在仓储层先按流水日期收窄，
// 避免全表拉取后再丢弃
func (h *PatientHandler) loadViews(r *http.Request, rng analytics.DateRange, w analytics.Window) ([]analytics.PatientView, error) {
	ctx := r.Context()

	var patients []domain.Patient
	var err error
	if w.Bounded {
		patients, err = h.patients.GetPatientsForDateRange(ctx, w.Start, w.End)
	} else {
		patients, err = h.patients.GetPatients(ctx, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}

	views := analytics.RecomputeWindow(patients, rng, w)

	// 外部预约列表只读参考：仍待就诊的患者不出现在主列表
	if raw, err := h.kv.Get(ctx, analytics.AppointmentsKey); err == nil {
		views = analytics.SuppressPendingAppointments(views, analytics.ParseAppointments(raw))
	} else if err != store.ErrMiss {
		h.logger.Debug("Failed to read appointments list", zap.Error(err))
	}

	return views, nil
}

// ListPatients 患者列表（窗口重算 + 搜索/性别/标签过滤 + 排序）
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	rng, win, lq := parseQuery(r)

	views, err := h.loadViews(r, rng, win)
	if err != nil {
		h.logger.Error("Failed to build patient list", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeOK(w, analytics.FilterAndSort(views, lq))
}

type summaryResponse struct {
	PatientCount int     `json:"patient_count"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalVisits  int     `json:"total_visits"`
	Formatted    string  `json:"formatted_revenue"`
}

// Summary 窗口内营收/就诊汇总卡片
func (h *PatientHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, win, _ := parseQuery(r)

	views, err := h.loadViews(r, rng, win)
	if err != nil {
		h.logger.Error("Failed to build revenue summary", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := summaryResponse{PatientCount: len(views)}
	for _, v := range views {
		resp.TotalRevenue += v.TotalSpent
		resp.TotalVisits += v.VisitCount
	}
	resp.Formatted = analytics.FormatCurrency(resp.TotalRevenue)
	writeOK(w, resp)
}

// ExportConsultations 就诊去重后的 Excel 导出
func (h *PatientHandler) ExportConsultations(w http.ResponseWriter, r *http.Request) {
	rng, win, lq := parseQuery(r)

	views, err := h.loadViews(r, rng, win)
	if err != nil {
		h.logger.Error("Failed to build consultation export", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	views = analytics.FilterAndSort(views, lq)

	rows := analytics.BuildConsultationRows(views)
	data, err := analytics.GenerateConsultationExport(rows)
	if err != nil {
		h.logger.Error("Failed to generate export workbook", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := analytics.ExportFileName(win.Label(rng))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetPatient 单患者（窗口重算后的视图；窗口模式非 all 且无存活交易时仍返回原始档案）
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request, id string) {
	rng, win, _ := parseQuery(r)

	patient, err := h.patients.GetPatientByID(r.Context(), id)
	if err != nil {
		writeFail(w, http.StatusNotFound, err.Error())
		return
	}

	views := analytics.RecomputeWindow([]domain.Patient{*patient}, rng, win)
	if len(views) == 0 {
		writeOK(w, patient)
		return
	}
	writeOK(w, views[0])
}

// DeletePatient 删除患者
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.patients.DeletePatient(r.Context(), id); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, map[string]string{"deleted": id})
}

// DeleteTransaction 删除流水：先远端确认，失败时给出用户可见错误且本地不变
func (h *PatientHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.patients.DeleteTransaction(r.Context(), id); err != nil {
		h.logger.Warn("Transaction delete failed", zap.String("transaction_id", id), zap.Error(err))
		writeFail(w, http.StatusBadGateway, fmt.Sprintf("failed to delete transaction: %v", err))
		return
	}
	writeOK(w, map[string]string{"deleted": id})
}

// ListDoctors 医生目录
func (h *PatientHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctors.GetAllDoctors(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, doctors)
}

// Receipt 打印收据的数据载荷（charges/totals 由共享的折扣还原函数计算）
func (h *PatientHandler) Receipt(w http.ResponseWriter, r *http.Request, id string) {
	rng, win, _ := parseQuery(r)

	patient, err := h.patients.GetPatientByID(r.Context(), id)
	if err != nil {
		writeFail(w, http.StatusNotFound, err.Error())
		return
	}

	views := analytics.RecomputeWindow([]domain.Patient{*patient}, rng, win)
	if len(views) == 0 {
		writeWarn(w, http.StatusNotFound, "no transactions in selected date range")
		return
	}

	charges, totals := analytics.BuildReceiptCharges(views[0].Transactions)
	writeOK(w, map[string]any{
		"patient": views[0].Patient,
		"charges": charges,
		"totals":  totals,
	})
}
