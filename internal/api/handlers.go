package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meridianpay/meridian/internal/domain"
	"github.com/meridianpay/meridian/internal/progress"
	"github.com/meridianpay/meridian/internal/rates"
	"github.com/meridianpay/meridian/internal/store"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	store *store.Store
	table *rates.Table
	sim   *progress.Simulator
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// persist writes the store state after a mutation. Persistence lives
// at this boundary on purpose: a failed save must not undo an applied
// in-memory change, so it is logged and the request still succeeds.
func (h *Handlers) persist() {
	if err := h.store.Save(); err != nil {
		log.Printf("[api] WARNING: persist store state: %v", err)
	}
}

// --- GetRates ---

func (h *Handlers) GetRates(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any, 3)
	for _, corridor := range h.table.Corridors() {
		out[string(corridor)] = h.table.Get(corridor)
	}
	out["as_of"] = h.table.AsOf()
	writeJSON(w, http.StatusOK, out)
}

// --- Beneficiaries ---

func (h *Handlers) ListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"beneficiaries": h.store.Beneficiaries(),
	})
}

func (h *Handlers) CreateBeneficiary(w http.ResponseWriter, r *http.Request) {
	var b domain.Beneficiary
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	b.ID = ""

	if msg := validateBeneficiary(b); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created := h.store.UpsertBeneficiary(b)
	h.persist()
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateBeneficiary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.Beneficiary(id); !ok {
		writeError(w, http.StatusNotFound, "beneficiary not found")
		return
	}

	var b domain.Beneficiary
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	b.ID = id

	if msg := validateBeneficiary(b); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	updated := h.store.UpsertBeneficiary(b)
	h.persist()
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteBeneficiary(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteBeneficiary(chi.URLParam(r, "id"))
	h.persist()
	w.WriteHeader(http.StatusNoContent)
}

// --- MakeQuote ---

func (h *Handlers) MakeQuote(w http.ResponseWriter, r *http.Request) {
	var input domain.QuoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	// The calculator performs no bounds checks, so input is guarded
	// here before it runs.
	if input.Corridor != domain.CorridorSGDPHP && input.Corridor != domain.CorridorSGDMYR {
		writeError(w, http.StatusUnprocessableEntity, "unknown corridor")
		return
	}
	if input.DestAmount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "destination amount must be positive")
		return
	}
	if _, ok := h.store.Beneficiary(input.BeneficiaryID); !ok {
		writeError(w, http.StatusUnprocessableEntity, "beneficiary not found")
		return
	}

	writeJSON(w, http.StatusOK, h.store.MakeQuote(input))
}

// --- Payments ---

type confirmPaymentRequest struct {
	Quote         domain.Quote `json:"quote"`
	Reference     string       `json:"reference"`
	BeneficiaryID string       `json:"beneficiary_id"`
}

func (h *Handlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	if req.Quote.ID == "" || req.Quote.DestAmount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "quote is required")
		return
	}
	if strings.TrimSpace(req.Reference) == "" {
		writeError(w, http.StatusUnprocessableEntity, "reference is required")
		return
	}
	if _, ok := h.store.Beneficiary(req.BeneficiaryID); !ok {
		writeError(w, http.StatusUnprocessableEntity, "beneficiary not found")
		return
	}

	p := h.store.ConfirmPayment(req.Quote, req.Reference, req.BeneficiaryID)
	h.persist()
	h.sim.Start(p.ID)
	log.Printf("[api] payment %s confirmed (%s, ref %s)", p.ID, p.Corridor, p.Reference)

	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	corridor := q.Get("corridor")
	search := strings.ToLower(q.Get("q"))

	var out []domain.Payment
	for _, p := range h.store.Payments() {
		if status != "" && string(p.Status) != status {
			continue
		}
		if corridor != "" && string(p.Corridor) != corridor {
			continue
		}
		if search != "" {
			name := ""
			if b, ok := h.store.Beneficiary(p.BeneficiaryID); ok {
				name = b.Name
			}
			if !strings.Contains(strings.ToLower(name), search) &&
				!strings.Contains(strings.ToLower(p.Reference), search) {
				continue
			}
		}
		out = append(out, p)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payments": out,
		"total":    len(out),
	})
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Payment(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	resp := map[string]any{"payment": p}
	if b, ok := h.store.Beneficiary(p.BeneficiaryID); ok {
		resp["beneficiary"] = b
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) AdvancePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	changed := h.store.AdvanceStatus(id)
	if changed {
		h.persist()
	}

	p, ok := h.store.Payment(id)
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment": p,
		"changed": changed,
	})
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Dashboard())
}
