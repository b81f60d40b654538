package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterBedRoutes IPD 床位管理路由
func (r *Router) RegisterBedRoutes(h *BedHandler) {
	r.Handle("/ipd/api/v1/beds", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListBeds(w, req)
	})

	r.Handle("/ipd/api/v1/beds/reset-all", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ResetAll(w, req)
	})

	// beds/{bedId}/{action}
	r.Handle("/ipd/api/v1/beds/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/ipd/api/v1/beds/")
		parts := strings.SplitN(rest, "/", 2)
		bedID := parts[0]
		if bedID == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if len(parts) == 1 {
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.GetBed(w, req, bedID)
			return
		}

		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch parts[1] {
		case "admit":
			h.Admit(w, req, bedID)
		case "discharge":
			h.Discharge(w, req, bedID)
		case "tat/start":
			h.StartTAT(w, req, bedID)
		case "tat/stop":
			h.StopTAT(w, req, bedID)
		case "tat/reset":
			h.ResetTAT(w, req, bedID)
		case "notes":
			h.AddNote(w, req, bedID)
		case "forms":
			h.SubmitForm(w, req, bedID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

// RegisterPatientRoutes 患者列表/汇总/导出路由
func (r *Router) RegisterPatientRoutes(h *PatientHandler) {
	r.Handle("/crm/api/v1/patients", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListPatients(w, req)
	})

	r.Handle("/crm/api/v1/patients/summary", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Summary(w, req)
	})

	r.Handle("/crm/api/v1/patients/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportConsultations(w, req)
	})

	// patients/{id}, patients/{id}/receipt
	r.Handle("/crm/api/v1/patients/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/crm/api/v1/patients/")
		parts := strings.SplitN(rest, "/", 2)
		id := parts[0]
		if id == "" || id == "summary" || id == "export" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if len(parts) == 2 && parts[1] == "receipt" {
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.Receipt(w, req, id)
			return
		}

		switch req.Method {
		case http.MethodGet:
			h.GetPatient(w, req, id)
		case http.MethodDelete:
			h.DeletePatient(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/crm/api/v1/transactions/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/crm/api/v1/transactions/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.DeleteTransaction(w, req, id)
	})

	r.Handle("/crm/api/v1/doctors", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListDoctors(w, req)
	})
}

// RegisterBillRoutes OPD 账单路由
func (r *Router) RegisterBillRoutes(h *BillHandler) {
	r.Handle("/billing/api/v1/bills", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListBills(w, req)
		case http.MethodPost:
			h.CreateBill(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/billing/api/v1/bills/", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/billing/api/v1/bills/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			h.GetBill(w, req, id)
		case http.MethodPut:
			h.UpdateBill(w, req, id)
		case http.MethodDelete:
			h.DeleteBill(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
