package pricing

import (
	"fmt"
	"math"
)

// Status distinguishes "priced at some amount" from "not priceable yet" from
// "the inputs are broken". Drafts routinely sit in StatusIncomplete while the
// client is still configuring them; StatusError means a bug or bad catalog data
// and must be logged by the caller.
type Status int

const (
	StatusPriced Status = iota
	StatusIncomplete
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPriced:
		return "priced"
	case StatusIncomplete:
		return "incomplete"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// CostResult is the outcome of a cost computation. Amount is only meaningful
// when Status is StatusPriced; display layers render the other states as 0.
type CostResult struct {
	Status Status
	Amount float64
	Reason string
}

func Priced(amount float64) CostResult {
	return CostResult{Status: StatusPriced, Amount: amount}
}

func Incomplete(reason string) CostResult {
	return CostResult{Status: StatusIncomplete, Reason: reason}
}

func Errorf(format string, args ...interface{}) CostResult {
	return CostResult{Status: StatusError, Reason: fmt.Sprintf(format, args...)}
}

// MaterialRates are the pricing coefficients of a material group, either live
// catalog values or a frozen snapshot.
type MaterialRates struct {
	BasePrice          float64
	PricePerFold       float64
	PricePer100Girth   float64
	PricePerCrushFold  float64
	SampleWeight       float64
	SampleWeightPerSqm float64
}

func (r MaterialRates) valid() error {
	if r.BasePrice < 0 || r.PricePerFold < 0 || r.PricePer100Girth < 0 || r.PricePerCrushFold < 0 {
		return fmt.Errorf("negative price coefficient")
	}
	return nil
}

// GirthUnits is the pricing granularity: one unit per started 100mm of girth.
func GirthUnits(girthMM float64) int {
	if girthMM <= 0 {
		return 0
	}
	return int(math.Ceil(girthMM / 100))
}

// UnitCost is the per-metre cost of one flashing profile.
func UnitCost(rates MaterialRates, girthMM float64, foldCount, crushCount int) CostResult {
	if err := rates.valid(); err != nil {
		return Errorf("material rates: %v", err)
	}
	if foldCount < 0 || crushCount < 0 || crushCount > 2 {
		return Errorf("fold counts out of range: folds=%d crush=%d", foldCount, crushCount)
	}
	if girthMM <= 0 {
		return Incomplete("no geometry")
	}
	unit := rates.BasePrice +
		rates.PricePerFold*float64(foldCount) +
		rates.PricePer100Girth*float64(GirthUnits(girthMM)) +
		rates.PricePerCrushFold*float64(crushCount)
	return Priced(unit)
}

// SpecificationCost prices one (quantity, length) line of a flashing.
func SpecificationCost(rates MaterialRates, girthMM float64, foldCount, crushCount int, lengthMM float64, quantity int) CostResult {
	if lengthMM < 0 || quantity < 0 {
		return Errorf("negative specification: length=%v quantity=%d", lengthMM, quantity)
	}
	if lengthMM == 0 || quantity == 0 {
		return Incomplete("specification not fully entered")
	}
	unit := UnitCost(rates, girthMM, foldCount, crushCount)
	if unit.Status != StatusPriced {
		return unit
	}
	return Priced(unit.Amount * (lengthMM / 1000) * float64(quantity))
}

// SpecificationWeight estimates the weight in kg of one specification line
// from the material's sample weight per square metre.
func SpecificationWeight(rates MaterialRates, girthMM, lengthMM float64, quantity int) float64 {
	if rates.SampleWeightPerSqm <= 0 || girthMM <= 0 || lengthMM <= 0 || quantity <= 0 {
		return 0
	}
	perUnit := rates.SampleWeight / rates.SampleWeightPerSqm * girthMM * lengthMM / 1_000_000
	return perUnit * float64(quantity)
}

// CartTotal applies delivery cost and GST to the summed flashing costs,
// rounded to cents.
func CartTotal(flashingsCost, deliveryCost, gstRatio float64) (float64, error) {
	if gstRatio < 0 || gstRatio > 1 {
		return 0, fmt.Errorf("gst ratio %v out of range [0,1]", gstRatio)
	}
	if flashingsCost < 0 || deliveryCost < 0 {
		return 0, fmt.Errorf("negative cost component")
	}
	return Round2((flashingsCost + deliveryCost) * (1 + gstRatio)), nil
}

// Round2 rounds to two decimal places, the finest unit we charge in.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
