package notifier

import (
	"errors"
	"testing"

	"github.com/newthinker/insight/internal/core"
)

type mockNotifier struct {
	name       string
	sendCalled int
	shouldFail bool
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Send(rec core.Recommendation) error {
	m.sendCalled++
	if m.shouldFail {
		return errors.New("send failed")
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	if err := r.Register(mock); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := r.Register(&mockNotifier{name: "test"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	got, err := r.Get("test")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name() != "test" {
		t.Errorf("expected test, got %s", got.Name())
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for missing notifier")
	}
}

func TestRegistry_NotifyAll(t *testing.T) {
	r := NewRegistry()
	good := &mockNotifier{name: "good"}
	bad := &mockNotifier{name: "bad", shouldFail: true}
	r.Register(good)
	r.Register(bad)

	errs := r.NotifyAll(core.Recommendation{Ticker: "ACME", Recommendation: core.Buy})

	if good.sendCalled != 1 || bad.sendCalled != 1 {
		t.Error("every notifier should be attempted")
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if _, present := errs["bad"]; !present {
		t.Error("expected the failing notifier in the error map")
	}
}
