package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/insight/internal/config"
)

func TestCompanyFacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("EDGAR requests require a User-Agent")
		}
		if r.URL.Path != "/api/xbrl/companyfacts/CIK0000320193.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"facts":{"us-gaap":{
			"NetIncomeLoss":{"units":{"USD":[
				{"val":90000000000,"end":"2022-09-24","form":"10-K","fy":2022,"fp":"FY"},
				{"val":97000000000,"end":"2023-09-30","form":"10-K","fy":2023,"fp":"FY"},
				{"val":20000000000,"end":"2023-12-30","form":"10-Q","fy":2024,"fp":"Q1"}]}},
			"Revenues":{"units":{"USD":[
				{"val":383000000000,"end":"2023-09-30","form":"10-K","fy":2023,"fp":"FY"}]}},
			"NetCashProvidedByUsedInOperatingActivities":{"units":{"USD":[
				{"val":110000000000,"end":"2023-09-30","form":"10-K","fy":2023,"fp":"FY"}]}},
			"PaymentsToAcquirePropertyPlantAndEquipment":{"units":{"USD":[
				{"val":11000000000,"end":"2023-09-30","form":"10-K","fy":2023,"fp":"FY"}]}}
		}}}`))
	}))
	defer srv.Close()

	c := New(config.EdgarConfig{BaseURL: srv.URL, UserAgent: "test test@example.com"})
	c.ciks["AAPL"] = "0000320193" // seed cache to skip the ticker-table fetch

	f, err := c.CompanyFacts(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Latest 10-K wins over older years and quarterly filings.
	if f.NetIncome != 97000000000 {
		t.Errorf("unexpected net income: %f", f.NetIncome)
	}
	if !f.HasRevenue || f.Revenue != 383000000000 {
		t.Errorf("unexpected revenue: %f", f.Revenue)
	}

	fcf, ok := f.FreeCashFlow()
	if !ok {
		t.Fatal("expected FCF derivable")
	}
	if fcf != 99000000000 {
		t.Errorf("unexpected FCF: %f", fcf)
	}
}

func TestFreeCashFlow_Missing(t *testing.T) {
	f := &Facts{}
	if _, ok := f.FreeCashFlow(); ok {
		t.Error("expected no FCF without cash-flow facts")
	}
}
