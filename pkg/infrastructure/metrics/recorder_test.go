package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vsinha/mrpsim/pkg/application/services/simulation"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	testhelpers "github.com/vsinha/mrpsim/pkg/infrastructure/testing"
)

func TestRecorder_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	if _, err := NewRecorder(reg); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
}

func TestRecorder_FollowsSimulation(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	cfg := simulation.DefaultConfig()
	cfg.StartDate = testhelpers.StartDate
	cfg.Seed = 4
	cfg.Demand.StdDev = 0
	sim, err := simulation.New(testhelpers.BuildSimpleCatalog(), cfg, simulation.WithEventHandler(recorder))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	order, err := sim.CreateOrder(testhelpers.SimpleFinished, 3)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := sim.PlacePurchaseOrder(testhelpers.SimpleSupplier, testhelpers.SimpleMaterial, 6); err != nil {
		t.Fatalf("PlacePurchaseOrder failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := sim.AdvanceDay(cfg.Demand); err != nil {
			t.Fatalf("AdvanceDay failed: %v", err)
		}
	}
	if err := sim.ReleaseOrder(order.ID); err != nil {
		t.Fatalf("ReleaseOrder failed: %v", err)
	}
	if _, err := sim.AdvanceDay(cfg.Demand); err != nil {
		t.Fatalf("AdvanceDay failed: %v", err)
	}

	if got := testutil.ToFloat64(recorder.currentDay); got != 5 {
		t.Errorf("Expected current day 5, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.purchasesPlaced); got != 1 {
		t.Errorf("Expected 1 purchase placed, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.unitsReceived.WithLabelValues("2")); got != 6 {
		t.Errorf("Expected 6 units received, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.unitsProduced.WithLabelValues("1")); got != 3 {
		t.Errorf("Expected 3 units produced, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.ordersCreated.WithLabelValues("manual")); got != 1 {
		t.Errorf("Expected 1 manual order, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.ordersCreated.WithLabelValues("generated")); got != 4 {
		t.Errorf("Expected 4 generated orders, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.events.WithLabelValues(string(entities.EventOrder), "released")); got != 1 {
		t.Errorf("Expected 1 release event, got %v", got)
	}

	type labels struct{ eventType, action string }
	seen := make(map[labels]bool)
	var total float64
	for _, e := range sim.Events() {
		key := labels{string(e.Type), e.Extra["action"]}
		if !seen[key] {
			seen[key] = true
			total += testutil.ToFloat64(recorder.events.WithLabelValues(key.eventType, key.action))
		}
	}
	if int(total) != len(sim.Events()) {
		t.Errorf("Expected %d events counted, got %v", len(sim.Events()), total)
	}
}
