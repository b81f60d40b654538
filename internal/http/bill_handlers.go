package httpapi

import (
	"net/http"

	"hospilink-data/internal/domain"
	"hospilink-data/internal/repository"

	"go.uber.org/zap"
)

// BillHandler OPD 账单 API
type BillHandler struct {
	bills  repository.BillsRepository
	logger *zap.Logger
}

func NewBillHandler(bills repository.BillsRepository, logger *zap.Logger) *BillHandler {
	return &BillHandler{bills: bills, logger: logger}
}

func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.ListBills(r.Context(), r.URL.Query().Get("patient_id"))
	if err != nil {
		h.logger.Error("Failed to list bills", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, bills)
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request, id string) {
	bill, err := h.bills.GetBill(r.Context(), id)
	if err != nil {
		writeFail(w, http.StatusNotFound, err.Error())
		return
	}
	writeOK(w, bill)
}

func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var bill domain.Bill
	if err := decodeBody(r, &bill); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if bill.PatientID == "" || bill.BillNumber == "" {
		writeWarn(w, http.StatusBadRequest, "patient_id and bill_number are required")
		return
	}
	if len(bill.Items) == 0 {
		// 动态表单不允许删到空条目，后端同样拒绝
		writeWarn(w, http.StatusBadRequest, "bill must have at least one item")
		return
	}

	if err := h.bills.CreateBill(r.Context(), &bill); err != nil {
		h.logger.Error("Failed to create bill", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, bill)
}

func (h *BillHandler) UpdateBill(w http.ResponseWriter, r *http.Request, id string) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.bills.UpdateBill(r.Context(), id, fields); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	bill, err := h.bills.GetBill(r.Context(), id)
	if err != nil {
		writeFail(w, http.StatusNotFound, err.Error())
		return
	}
	writeOK(w, bill)
}

func (h *BillHandler) DeleteBill(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.bills.DeleteBill(r.Context(), id); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, map[string]string{"deleted": id})
}
