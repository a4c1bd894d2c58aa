package main

import (
	"fmt"
	"log"

	"github.com/vsinha/mrpsim/pkg/application/services/reporting"
	"github.com/vsinha/mrpsim/pkg/application/services/simulation"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/repositories/jsoncatalog"
)

// Runs a month of the furniture workshop, releasing every order as soon as
// its materials are on hand and buying whatever the shortage report suggests.
func main() {
	cat, err := jsoncatalog.LoadFile("data/catalog.json")
	if err != nil {
		log.Fatal(err)
	}

	cfg := simulation.DefaultConfig()
	cfg.Seed = 42
	cfg.StartDate = entities.Today()

	sim, err := simulation.Bootstrap(cat, cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("🪑 Simulating 30 days of the furniture workshop...")
	for day := 0; day < 30; day++ {
		for _, o := range sim.Orders() {
			if o.Status == entities.OrderPending {
				// Blocked releases are retried the next day
				_ = sim.ReleaseOrder(o.ID)
			}
		}

		report, err := sim.ShortageReport(nil)
		if err != nil {
			log.Fatal(err)
		}
		for _, s := range report.Suggestions {
			if _, err := sim.PlacePurchaseOrder(s.SupplierID, s.MaterialID, s.Quantity); err != nil {
				log.Fatal(err)
			}
		}

		result, err := sim.AdvanceDay(cfg.Demand)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  Day %2d: produced %d units, received %d purchase orders, %d new orders\n",
			result.Day, result.CapacityUsed, len(result.Received), len(result.NewOrders))
	}

	summary := reporting.Summarize(sim)
	fmt.Println()
	fmt.Println("📊 Summary:")
	fmt.Printf("  Units produced: %d\n", summary.UnitsProduced)
	fmt.Printf("  Orders: %v\n", summary.OrdersByStatus)
	fmt.Printf("  Late orders: %d\n", summary.LateOrders)
	fmt.Printf("  Committed spend: %s\n", summary.CommittedSpend.StringFixed(2))
	for _, spend := range summary.SupplierSpend {
		fmt.Printf("    %-20s %s\n", spend.SupplierName, spend.Total.StringFixed(2))
	}
}
