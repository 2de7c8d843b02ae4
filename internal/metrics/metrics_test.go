package metrics

import (
	"testing"

	"github.com/newthinker/insight/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}
}

func gatherNames(t *testing.T, reg *Registry) map[string]bool {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestRegistry_RecordRequest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRequest("GET", "/api/v1/analyses", 200, 0.05)

	if !gatherNames(t, reg)["http_requests_total"] {
		t.Error("expected http_requests_total metric")
	}
}

func TestRegistry_RecordRequest_StatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordRequest("GET", "/test", tt.status, 0.01)

			mfs, err := reg.Gather()
			if err != nil {
				t.Fatalf("gather failed: %v", err)
			}

			found := false
			for _, mf := range mfs {
				if mf.GetName() == "http_requests_total" {
					for _, m := range mf.GetMetric() {
						for _, label := range m.GetLabel() {
							if label.GetName() == "status" && label.GetValue() == tt.expected {
								found = true
							}
						}
					}
				}
			}
			if !found {
				t.Errorf("expected status label %s for status code %d", tt.expected, tt.status)
			}
		})
	}
}

func TestRegistry_InFlight(t *testing.T) {
	reg := NewRegistry()

	reg.InFlightInc()
	reg.InFlightInc()
	reg.InFlightDec()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_in_flight" {
			found = true
			for _, m := range mf.GetMetric() {
				if m.GetGauge().GetValue() != 1 {
					t.Errorf("expected in-flight gauge to be 1, got %v", m.GetGauge().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("expected http_requests_in_flight metric")
	}
}

func TestRegistry_AnalyzerCompleted(t *testing.T) {
	reg := NewRegistry()

	reg.AnalyzerCompleted(core.AnalysisDCF, 0.4, "success")
	reg.AnalyzerCompleted(core.AnalysisDCF, 1.2, "timeout")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	outcomes := 0
	for _, mf := range mfs {
		switch mf.GetName() {
		case "insight_analyzer_outcomes_total":
			for _, m := range mf.GetMetric() {
				outcomes += int(m.GetCounter().GetValue())
			}
		case "insight_analyzer_duration_seconds":
			for _, m := range mf.GetMetric() {
				if m.GetHistogram().GetSampleCount() != 2 {
					t.Errorf("expected 2 duration samples, got %d", m.GetHistogram().GetSampleCount())
				}
			}
		}
	}
	if outcomes != 2 {
		t.Errorf("expected 2 outcome increments, got %d", outcomes)
	}
}

func TestRegistry_AnalysisCompleted(t *testing.T) {
	reg := NewRegistry()

	reg.AnalysisCompleted("ACME", 12.5, false)
	reg.AnalysisCompleted("ACME", 0.1, true)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	statuses := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "insight_analyses_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "status" {
					statuses[label.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	if statuses["success"] != 1 || statuses["failed"] != 1 {
		t.Errorf("expected one success and one failure, got %v", statuses)
	}
}

func TestRegistry_RecordArchive(t *testing.T) {
	reg := NewRegistry()

	reg.RecordArchive("s3", "success")

	if !gatherNames(t, reg)["insight_archives_total"] {
		t.Error("expected insight_archives_total metric")
	}
}

// Ensure the registry implements prometheus.Gatherer interface
func TestRegistry_ImplementsGatherer(t *testing.T) {
	reg := NewRegistry()
	var _ prometheus.Gatherer = reg
}
