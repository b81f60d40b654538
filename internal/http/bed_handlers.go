package httpapi

import (
	"context"
	"errors"
	"net/http"

	"hospilink-data/internal/beds"
	"hospilink-data/internal/domain"

	"go.uber.org/zap"
)

// BedHandler IPD 床位管理 API
type BedHandler struct {
	tracker *beds.Tracker
	logger  *zap.Logger
}

func NewBedHandler(tracker *beds.Tracker, logger *zap.Logger) *BedHandler {
	return &BedHandler{tracker: tracker, logger: logger}
}

// ListBeds 全部 40 张床位
func (h *BedHandler) ListBeds(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.tracker.Beds())
}

// GetBed 单床位
func (h *BedHandler) GetBed(w http.ResponseWriter, r *http.Request, bedID string) {
	bed, ok := h.tracker.Bed(bedID)
	if !ok {
		writeFail(w, http.StatusNotFound, "bed not found")
		return
	}
	writeOK(w, bed)
}

type admitRequest struct {
	Patient domain.AdmittedPatient `json:"patient"`
}

// Admit 入院
func (h *BedHandler) Admit(w http.ResponseWriter, r *http.Request, bedID string) {
	var req admitRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Patient.PatientID == "" {
		writeWarn(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	bed, err := h.tracker.Admit(r.Context(), bedID, req.Patient)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	writeOK(w, bed)
}

// Discharge 出院
func (h *BedHandler) Discharge(w http.ResponseWriter, r *http.Request, bedID string) {
	bed, err := h.tracker.Discharge(r.Context(), bedID)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	writeOK(w, bed)
}

func (h *BedHandler) StartTAT(w http.ResponseWriter, r *http.Request, bedID string) {
	h.tatOp(w, r, bedID, h.tracker.StartTAT)
}

func (h *BedHandler) StopTAT(w http.ResponseWriter, r *http.Request, bedID string) {
	h.tatOp(w, r, bedID, h.tracker.StopTAT)
}

func (h *BedHandler) ResetTAT(w http.ResponseWriter, r *http.Request, bedID string) {
	h.tatOp(w, r, bedID, h.tracker.ResetTAT)
}

type noteRequest struct {
	Note    string `json:"note"`
	AddedBy string `json:"added_by"`
}

// AddNote 追加会诊备注
func (h *BedHandler) AddNote(w http.ResponseWriter, r *http.Request, bedID string) {
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AddedBy == "" {
		req.AddedBy = "IPD Staff"
	}

	if err := h.tracker.AddConsultantNote(r.Context(), bedID, req.Note, req.AddedBy); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	bed, _ := h.tracker.Bed(bedID)
	writeOK(w, bed)
}

type formRequest struct {
	Kind    domain.FormKind `json:"kind"`
	Payload map[string]any  `json:"payload"`
}

// SubmitForm 记录床旁表单提交
func (h *BedHandler) SubmitForm(w http.ResponseWriter, r *http.Request, bedID string) {
	var req formRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" {
		writeWarn(w, http.StatusBadRequest, "form kind is required")
		return
	}

	if err := h.tracker.SubmitForm(r.Context(), bedID, req.Kind, req.Payload); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	bed, _ := h.tracker.Bed(bedID)
	writeOK(w, bed)
}

// ResetAll 清空快照并重建床位（IPD 流水号保留）
func (h *BedHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	h.tracker.ResetAll(r.Context())
	writeOK(w, h.tracker.Beds())
}

func (h *BedHandler) tatOp(w http.ResponseWriter, r *http.Request, bedID string, op func(ctx context.Context, bedID string) error) {
	if err := op(r.Context(), bedID); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	bed, _ := h.tracker.Bed(bedID)
	writeOK(w, bed)
}

// writeTrackerError 把跟踪器错误映射为 HTTP 状态（状态未变更，见 beds 包约定）
func (h *BedHandler) writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, beds.ErrBedNotFound):
		writeFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, beds.ErrBedOccupied),
		errors.Is(err, beds.ErrBedVacant),
		errors.Is(err, beds.ErrInvalidTransition),
		errors.Is(err, beds.ErrEmptyNote):
		writeWarn(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Bed operation failed", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, err.Error())
	}
}
