package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"hospilink-data/internal/domain"
	"hospilink-data/internal/repository"

	"go.uber.org/zap"
)

func newBillRouter(t *testing.T) *Router {
	t.Helper()
	router := NewRouter(zap.NewNop())
	router.RegisterBillRoutes(NewBillHandler(repository.NewMemoryBillsRepository(), zap.NewNop()))
	return router
}

func TestBillCRUD(t *testing.T) {
	router := newBillRouter(t)

	rec := doJSON(router, http.MethodPost, "/billing/api/v1/bills",
		`{"bill_number":"OPD-001","patient_id":"p1","items":[{"description":"Consultation","quantity":1,"unit_price":500,"amount":500}],"subtotal":500,"total":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Result domain.Bill `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Result.BillID == "" {
		t.Fatal("expected generated bill_id")
	}
	if created.Result.Status != "PENDING" {
		t.Fatalf("expected default PENDING status, got %s", created.Result.Status)
	}

	id := created.Result.BillID

	rec = doJSON(router, http.MethodGet, "/billing/api/v1/bills?patient_id=p1", "")
	if !strings.Contains(rec.Body.String(), "OPD-001") {
		t.Fatalf("expected bill in list, got %s", rec.Body.String())
	}

	rec = doJSON(router, http.MethodPut, "/billing/api/v1/bills/"+id, `{"status":"PAID","payment_mode":"UPI"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"PAID"`) {
		t.Fatalf("expected updated status, got %s", rec.Body.String())
	}

	rec = doJSON(router, http.MethodDelete, "/billing/api/v1/bills/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", rec.Code)
	}

	rec = doJSON(router, http.MethodGet, "/billing/api/v1/bills/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCreateBillValidation(t *testing.T) {
	router := newBillRouter(t)

	rec := doJSON(router, http.MethodPost, "/billing/api/v1/bills", `{"bill_number":"OPD-002"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing patient_id, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/billing/api/v1/bills",
		`{"bill_number":"OPD-002","patient_id":"p1","items":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty items, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "at least one item") {
		t.Fatalf("expected item validation message, got %s", rec.Body.String())
	}
}
