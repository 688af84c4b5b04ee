package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meridianpay/meridian/internal/domain"
	"github.com/meridianpay/meridian/internal/pricing"
	"github.com/meridianpay/meridian/internal/progress"
	"github.com/meridianpay/meridian/internal/rates"
	"github.com/meridianpay/meridian/internal/repository"
	"github.com/meridianpay/meridian/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	table := rates.NewTable(map[domain.Corridor]float64{
		domain.CorridorSGDPHP: 41.30,
		domain.CorridorSGDMYR: 3.50,
	}, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))

	st := store.New(pricing.NewCalculator(table), repository.NewStateRepo(db, ""))
	if err := st.Load(); err != nil {
		t.Fatalf("load store: %v", err)
	}

	// Ticks far in the future so tests drive advancement manually.
	sim := progress.NewSimulator(st, []time.Duration{time.Hour}, nil)
	t.Cleanup(sim.Stop)

	srv := httptest.NewServer(NewRouter(st, table, sim, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestGetRates(t *testing.T) {
	srv := newTestServer(t)

	var got map[string]any
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/rates", nil, &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got["SGD_PHP"] != 41.30 || got["SGD_MYR"] != 3.50 {
		t.Errorf("rates payload = %v", got)
	}
	if _, ok := got["as_of"]; !ok {
		t.Error("rates payload missing as_of")
	}
}

func TestMakeQuoteHappyPath(t *testing.T) {
	srv := newTestServer(t)

	var q domain.Quote
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quotes", domain.QuoteInput{
		Corridor: domain.CorridorSGDPHP, DestAmount: 50000, BeneficiaryID: "ph-1",
	}, &q)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if q.SourceNotionalSGD != 1210.65 || q.FeeSGD != 9.08 || q.TotalToPaySGD != 1219.73 {
		t.Errorf("quote figures: %+v", q)
	}
	if q.ETA != pricing.ETAFast {
		t.Errorf("eta = %q", q.ETA)
	}
}

func TestMakeQuoteRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		input domain.QuoteInput
	}{
		{"zero amount", domain.QuoteInput{Corridor: domain.CorridorSGDPHP, DestAmount: 0, BeneficiaryID: "ph-1"}},
		{"negative amount", domain.QuoteInput{Corridor: domain.CorridorSGDPHP, DestAmount: -5, BeneficiaryID: "ph-1"}},
		{"unknown corridor", domain.QuoteInput{Corridor: "SGD_IDR", DestAmount: 100, BeneficiaryID: "ph-1"}},
		{"missing beneficiary", domain.QuoteInput{Corridor: domain.CorridorSGDPHP, DestAmount: 100, BeneficiaryID: "nope"}},
	}
	for _, tc := range tests {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quotes", tc.input, nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", tc.name, resp.StatusCode)
		}
	}
}

func TestBeneficiaryValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body domain.Beneficiary
	}{
		{"missing name", domain.Beneficiary{Country: "PH", BankName: "BDO", AccountNumber: "0123456789"}},
		{"bad country", domain.Beneficiary{Country: "ID", Name: "X", BankName: "Y", AccountNumber: "0123456789"}},
		{"PH account too short", domain.Beneficiary{Country: "PH", Name: "X", BankName: "Y", AccountNumber: "12345"}},
		{"MY account letters", domain.Beneficiary{Country: "MY", Name: "X", BankName: "Y", AccountNumber: "12345abcde"}},
		{"bad email", domain.Beneficiary{Country: "PH", Name: "X", BankName: "Y", AccountNumber: "0123456789", Email: "not-an-email"}},
	}
	for _, tc := range tests {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/beneficiaries", tc.body, nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", tc.name, resp.StatusCode)
		}
	}
}

func TestBeneficiaryLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var created domain.Beneficiary
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/beneficiaries", domain.Beneficiary{
		Country: "MY", Name: "Penang Parts", BankName: "CIMB", AccountNumber: "1234567890",
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	if created.ID == "" {
		t.Fatal("create returned no id")
	}

	var list struct {
		Beneficiaries []domain.Beneficiary `json:"beneficiaries"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/api/v1/beneficiaries", nil, &list)
	if len(list.Beneficiaries) != 3 || list.Beneficiaries[0].ID != created.ID {
		t.Errorf("expected new beneficiary first, got %+v", list.Beneficiaries)
	}

	var updated domain.Beneficiary
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/beneficiaries/"+created.ID, domain.Beneficiary{
		Country: "MY", Name: "Penang Parts Sdn Bhd", BankName: "CIMB", AccountNumber: "1234567890",
	}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	if updated.ID != created.ID || updated.Name != "Penang Parts Sdn Bhd" {
		t.Errorf("update result: %+v", updated)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/beneficiaries/no-such-id", domain.Beneficiary{
		Country: "MY", Name: "Ghost", BankName: "CIMB", AccountNumber: "1234567890",
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/beneficiaries/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	// Deleting again stays a no-op.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/beneficiaries/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("repeat delete status = %d, want 204", resp.StatusCode)
	}
}

func confirmTestPayment(t *testing.T, srv *httptest.Server, reference string) domain.Payment {
	t.Helper()
	var q domain.Quote
	doJSON(t, http.MethodPost, srv.URL+"/api/v1/quotes", domain.QuoteInput{
		Corridor: domain.CorridorSGDPHP, DestAmount: 50000, BeneficiaryID: "ph-1",
	}, &q)

	var p domain.Payment
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/payments", map[string]any{
		"quote": q, "reference": reference, "beneficiary_id": "ph-1",
	}, &p)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("confirm status = %d", resp.StatusCode)
	}
	return p
}

func TestConfirmAndAdvancePayment(t *testing.T) {
	srv := newTestServer(t)
	p := confirmTestPayment(t, srv, "INV-1")

	if p.Status != domain.StatusConfirmed || len(p.Timeline) != 1 {
		t.Fatalf("confirmed payment: %+v", p)
	}

	var last struct {
		Payment domain.Payment `json:"payment"`
		Changed bool           `json:"changed"`
	}
	for i := 0; i < 3; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/payments/"+p.ID+"/advance", nil, &last)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("advance %d status = %d", i+1, resp.StatusCode)
		}
		if !last.Changed {
			t.Fatalf("advance %d reported no change", i+1)
		}
	}
	if last.Payment.Status != domain.StatusDelivered || len(last.Payment.Timeline) != 4 {
		t.Errorf("after 3 advances: status=%s timeline=%d", last.Payment.Status, len(last.Payment.Timeline))
	}

	// Terminal advance stays a safe no-op.
	doJSON(t, http.MethodPost, srv.URL+"/api/v1/payments/"+p.ID+"/advance", nil, &last)
	if last.Changed || last.Payment.Status != domain.StatusDelivered || len(last.Payment.Timeline) != 4 {
		t.Errorf("terminal advance mutated payment: %+v", last)
	}
}

func TestConfirmPaymentValidation(t *testing.T) {
	srv := newTestServer(t)

	var q domain.Quote
	doJSON(t, http.MethodPost, srv.URL+"/api/v1/quotes", domain.QuoteInput{
		Corridor: domain.CorridorSGDPHP, DestAmount: 100, BeneficiaryID: "ph-1",
	}, &q)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/payments", map[string]any{
		"quote": q, "reference": "  ", "beneficiary_id": "ph-1",
	}, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("blank reference status = %d, want 422", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/payments", map[string]any{
		"quote": q, "reference": "INV-9", "beneficiary_id": "ghost",
	}, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown beneficiary status = %d, want 422", resp.StatusCode)
	}
}

func TestListPaymentsFilters(t *testing.T) {
	srv := newTestServer(t)
	confirmTestPayment(t, srv, "INV-ALPHA")
	confirmTestPayment(t, srv, "INV-BETA")

	var list struct {
		Payments []domain.Payment `json:"payments"`
		Total    int              `json:"total"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/api/v1/payments", nil, &list)
	if list.Total != 2 {
		t.Fatalf("unfiltered total = %d, want 2", list.Total)
	}

	doJSON(t, http.MethodGet, srv.URL+"/api/v1/payments?q=beta", nil, &list)
	if list.Total != 1 || list.Payments[0].Reference != "INV-BETA" {
		t.Errorf("reference search: %+v", list)
	}

	doJSON(t, http.MethodGet, srv.URL+"/api/v1/payments?q=dressmakers", nil, &list)
	if list.Total != 2 {
		t.Errorf("beneficiary-name search total = %d, want 2", list.Total)
	}

	doJSON(t, http.MethodGet, srv.URL+"/api/v1/payments?status=DELIVERED", nil, &list)
	if list.Total != 0 {
		t.Errorf("status filter total = %d, want 0", list.Total)
	}

	doJSON(t, http.MethodGet, srv.URL+"/api/v1/payments?corridor=SGD_MYR", nil, &list)
	if list.Total != 0 {
		t.Errorf("corridor filter total = %d, want 0", list.Total)
	}
}

func TestGetPaymentIncludesBeneficiary(t *testing.T) {
	srv := newTestServer(t)
	p := confirmTestPayment(t, srv, "INV-1")

	var got struct {
		Payment     domain.Payment     `json:"payment"`
		Beneficiary domain.Beneficiary `json:"beneficiary"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/payments/"+p.ID, nil, &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got.Beneficiary.ID != "ph-1" {
		t.Errorf("beneficiary = %+v", got.Beneficiary)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/payments/missing", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing payment status = %d, want 404", resp.StatusCode)
	}
}

func TestExportPaymentsCSV(t *testing.T) {
	srv := newTestServer(t)
	p := confirmTestPayment(t, srv, "INV-CSV")

	resp, err := http.Get(srv.URL + "/api/v1/payments/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}

	rows, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want header + 1", len(rows))
	}
	wantHeader := []string{"Date", "Beneficiary", "Corridor", "Destination Amount", "Total SGD", "Fee", "Status", "Reference"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	row := rows[1]
	if row[1] != "Manila Dressmakers Co." || row[2] != "SGD -> PHP" || row[4] != fmt.Sprintf("%.2f", p.TotalToPaySGD) || row[7] != "INV-CSV" {
		t.Errorf("data row = %v", row)
	}
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)
	confirmTestPayment(t, srv, "INV-1")

	var stats struct {
		Volume30dSGD float64          `json:"volume_30d_sgd"`
		InTransit    int              `json:"in_transit"`
		AvgFeeSGD    float64          `json:"avg_fee_sgd"`
		Recent       []domain.Payment `json:"recent"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/dashboard", nil, &stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if stats.InTransit != 1 || stats.Volume30dSGD != 1219.73 || stats.AvgFeeSGD != 9.08 {
		t.Errorf("dashboard stats: %+v", stats)
	}
	if len(stats.Recent) != 1 {
		t.Errorf("recent count = %d, want 1", len(stats.Recent))
	}
}
