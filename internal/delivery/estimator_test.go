package delivery

import (
	"errors"
	"testing"

	"github.com/yarff/flashing-backend/internal/types"
)

func fleet(priority int, maxKM int, maxKG float64) *types.DeliveryMethod {
	return &types.DeliveryMethod{
		MethodType:    types.MethodTypeFactory,
		Name:          "factory fleet",
		IsActive:      true,
		Priority:      priority,
		MaxDistanceKM: maxKM,
		MaxWeightKG:   maxKG,
	}
}

func freight(priority int, maxKM int, maxKG float64, extraDays int) *types.DeliveryMethod {
	return &types.DeliveryMethod{
		MethodType:    types.MethodTypeFreight,
		Name:          "interstate freight",
		IsActive:      true,
		Priority:      priority,
		MaxDistanceKM: maxKM,
		MaxWeightKG:   maxKG,
		ExtraDays:     extraDays,
	}
}

func TestEstimateDaysFactoryFleet(t *testing.T) {
	m := fleet(1, 100, 1000)

	// (50/100)*(1+0.1*(500/1000))*1 = 0.525 -> ceil -> 1
	days, err := EstimateDays(m, 50, 500)
	if err != nil {
		t.Fatalf("EstimateDays() error: %v", err)
	}
	if days != 1 {
		t.Fatalf("days = %d, want 1", days)
	}

	// (100/100)*(1+0.1*(1000/1000)) = 1.1 -> ceil -> 2
	days, err = EstimateDays(m, 100, 1000)
	if err != nil {
		t.Fatalf("EstimateDays() error: %v", err)
	}
	if days != 2 {
		t.Fatalf("days = %d, want 2", days)
	}
}

func TestEstimateDaysFreight(t *testing.T) {
	m := freight(1, 500, 5000, 2)

	// 250/500*1 + 2 = 2.5 -> ceil -> 3
	days, err := EstimateDays(m, 250, 0)
	if err != nil {
		t.Fatalf("EstimateDays() error: %v", err)
	}
	if days != 3 {
		t.Fatalf("days = %d, want 3", days)
	}
}

func TestEstimateDaysFloorsAtOne(t *testing.T) {
	days, err := EstimateDays(fleet(1, 1000, 1000), 0, 0)
	if err != nil {
		t.Fatalf("EstimateDays() error: %v", err)
	}
	if days != 1 {
		t.Fatalf("days = %d, want floor of 1", days)
	}
}

func TestEstimateDaysUnknownTypeFatal(t *testing.T) {
	m := fleet(1, 100, 100)
	m.MethodType = "teleport"
	if _, err := EstimateDays(m, 10, 10); err == nil {
		t.Fatal("EstimateDays() accepted unknown method type")
	}
}

func TestSelectByPriority(t *testing.T) {
	near := fleet(1, 50, 200)
	far := freight(2, 1000, 5000, 2)
	inactive := fleet(0, 10000, 10000)
	inactive.IsActive = false

	m, err := Select([]*types.DeliveryMethod{far, near, inactive}, 30, 100)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if m != near {
		t.Fatalf("Select() = %q, want the lower-priority fleet method", m.Name)
	}

	// Too far for the fleet: falls through to freight.
	m, err = Select([]*types.DeliveryMethod{far, near}, 300, 100)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if m != far {
		t.Fatalf("Select() = %q, want freight", m.Name)
	}

	// Too heavy for everything.
	if _, err := Select([]*types.DeliveryMethod{far, near}, 30, 9000); !errors.Is(err, ErrNoMethod) {
		t.Fatalf("Select() error = %v, want ErrNoMethod", err)
	}
}

func TestCost(t *testing.T) {
	m := fleet(1, 100, 1000)
	m.BaseCost = 20
	m.CostPerKG = 0.5
	m.CostPerKM = 1.25

	if got := Cost(m, 40, 100); got != 120.0 {
		t.Fatalf("Cost() = %v, want 120.0", got)
	}
}
