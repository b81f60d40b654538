package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"hospilink-data/internal/beds"
	"hospilink-data/internal/domain"
	"hospilink-data/internal/store"

	"go.uber.org/zap"
)

type fakeKV struct {
	data map[string]string
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func newBedRouter(t *testing.T) (*Router, *beds.Tracker) {
	t.Helper()
	logger := zap.NewNop()
	kv := &fakeKV{data: map[string]string{}}

	tracker := beds.NewTracker(kv, nil, noopNotifier{}, logger)
	if err := tracker.Load(context.Background()); err != nil {
		t.Fatalf("load tracker: %v", err)
	}

	router := NewRouter(logger)
	router.RegisterBedRoutes(NewBedHandler(tracker, logger))
	return router, tracker
}

type noopNotifier struct{}

func (noopNotifier) TATExpired(ctx context.Context, bed domain.Bed) {}

func doJSON(router *Router, method, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListBeds_ReturnsFullWard(t *testing.T) {
	router, _ := newBedRouter(t)

	rec := doJSON(router, http.MethodGet, "/ipd/api/v1/beds", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"code":2000`) {
		t.Fatalf("expected wrapped result, got %s", body)
	}
	if !strings.Contains(body, `"bed_id":"bed-40"`) {
		t.Fatalf("expected 40 beds in response, got %s", body)
	}
}

func TestAdmitDischargeFlow(t *testing.T) {
	router, _ := newBedRouter(t)

	rec := doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-3/admit",
		`{"patient":{"patient_id":"P001","first_name":"Asha","last_name":"Verma"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admit failed: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"occupied"`) {
		t.Fatalf("expected occupied bed, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"ipd_number":"IPD-`) {
		t.Fatalf("expected assigned ipd number, got %s", rec.Body.String())
	}

	// 占用中的床位二次入院被拒
	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-3/admit",
		`{"patient":{"patient_id":"P002"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for occupied bed, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "occupied") {
		t.Fatalf("expected occupied warning, got %s", rec.Body.String())
	}

	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-3/discharge", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("discharge failed: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"vacant"`) {
		t.Fatalf("expected vacant bed after discharge, got %s", rec.Body.String())
	}
}

func TestAdmitValidation(t *testing.T) {
	router, _ := newBedRouter(t)

	rec := doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/admit", `{"patient":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing patient_id, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-99/admit",
		`{"patient":{"patient_id":"P001"}}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown bed, got %d", rec.Code)
	}
}

func TestTATLifecycleOverHTTP(t *testing.T) {
	router, _ := newBedRouter(t)

	doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/admit",
		`{"patient":{"patient_id":"P001"}}`)

	rec := doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/tat/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tat start failed: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"tat_status":"running"`) {
		t.Fatalf("expected running tat, got %s", rec.Body.String())
	}

	// running -> running 非法
	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/tat/start", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for double start, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/tat/stop", "")
	if !strings.Contains(rec.Body.String(), `"tat_status":"completed"`) {
		t.Fatalf("expected completed tat, got %s", rec.Body.String())
	}

	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/tat/reset", "")
	if !strings.Contains(rec.Body.String(), `"tat_status":"idle"`) {
		t.Fatalf("expected idle tat, got %s", rec.Body.String())
	}
}

func TestAddNoteAndSubmitForm(t *testing.T) {
	router, tracker := newBedRouter(t)

	doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-2/admit",
		`{"patient":{"patient_id":"P001"}}`)

	rec := doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-2/notes",
		`{"note":"Review bloods","added_by":"Dr. Rao"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add note failed: %d", rec.Code)
	}

	// 空白备注拒绝
	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-2/notes", `{"note":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty note, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-2/forms",
		`{"kind":"vitalChart","payload":{"bp":"120/80"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit form failed: %d %s", rec.Code, rec.Body.String())
	}

	bed, _ := tracker.Bed("bed-2")
	if len(bed.ConsultantNotes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(bed.ConsultantNotes))
	}
	if !bed.FormSubmitted(domain.FormNursesOrders) {
		t.Fatal("expected nurses orders record after vitalChart submission")
	}
}

func TestResetAllEndpoint(t *testing.T) {
	router, tracker := newBedRouter(t)

	doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/admit",
		`{"patient":{"patient_id":"P001"}}`)

	rec := doJSON(router, http.MethodPost, "/ipd/api/v1/beds/reset-all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset-all failed: %d", rec.Code)
	}

	var resp struct {
		Result []domain.Bed `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Result) != domain.BedCount {
		t.Fatalf("expected %d beds, got %d", domain.BedCount, len(resp.Result))
	}

	bed, _ := tracker.Bed("bed-1")
	if bed.Status != domain.BedVacant {
		t.Fatal("expected vacant bed after reset-all")
	}
}

func TestBedRoutesMethodGuards(t *testing.T) {
	router, _ := newBedRouter(t)

	rec := doJSON(router, http.MethodDelete, "/ipd/api/v1/beds", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodGet, "/ipd/api/v1/beds/bed-1/admit", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET admit, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/ipd/api/v1/beds/bed-1/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", rec.Code)
	}
}
