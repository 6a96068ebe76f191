package services

import (
	"github.com/yarff/flashing-backend/internal/pricing"
	"github.com/yarff/flashing-backend/internal/types"
)

// SpecificationQuote is one priced (quantity, length) line.
type SpecificationQuote struct {
	Specification *types.Specification
	Cost          pricing.CostResult
	WeightKG      float64
}

// FlashingQuote is the live pricing view of one draft flashing. Nothing here is
// persisted; checkout freezes a quote into snapshots.
type FlashingQuote struct {
	Flashing       *types.StoredFlashing
	Specifications []SpecificationQuote
	Cost           pricing.CostResult
	WeightKG       float64
}

// CartQuote aggregates flashing quotes with delivery cost and GST.
type CartQuote struct {
	Flashings []FlashingQuote

	// Sum of flashing costs before delivery and GST. Only meaningful when
	// Complete is true.
	Subtotal     float64
	DeliveryCost float64
	Total        float64
	WeightKG     float64

	// Complete means every flashing priced and fulfillment chosen; only a
	// complete cart can proceed to checkout.
	Complete bool
	Reasons  []string
}

func ratesForGroup(group *types.MaterialGroup) pricing.MaterialRates {
	return pricing.MaterialRates{
		BasePrice:          group.BasePrice,
		PricePerFold:       group.PricePerFold,
		PricePer100Girth:   group.PricePer100Girth,
		PricePerCrushFold:  group.PricePerCrushFold,
		SampleWeight:       group.SampleWeight,
		SampleWeightPerSqm: group.SampleWeightPerSqm,
	}
}

// QuoteFlashing prices a flashing against its current geometry and catalog
// state. The flashing must have MaterialVariant.Group preloaded when a variant
// is set.
func QuoteFlashing(flashing *types.StoredFlashing) FlashingQuote {
	quote := FlashingQuote{Flashing: flashing}

	if flashing.MaterialVariant == nil || flashing.MaterialVariant.Group == nil {
		quote.Cost = pricing.Incomplete("no material selected")
		return quote
	}
	if len(flashing.Nodes) == 0 {
		quote.Cost = pricing.Incomplete("no geometry")
		return quote
	}
	chain, err := flashing.Chain()
	if err != nil {
		quote.Cost = pricing.Errorf("stored geometry invalid: %v", err)
		return quote
	}
	if len(flashing.Specifications) == 0 {
		quote.Cost = pricing.Incomplete("no specifications")
		return quote
	}

	rates := ratesForGroup(flashing.MaterialVariant.Group)
	girth := flashing.TotalGirth
	folds := chain.FoldCount()
	crush := flashing.CrushFoldCount()

	total := 0.0
	weight := 0.0
	allPriced := true
	for i := range flashing.Specifications {
		spec := &flashing.Specifications[i]
		cost := pricing.SpecificationCost(rates, girth, folds, crush, spec.LengthMM, spec.Quantity)
		w := pricing.SpecificationWeight(rates, girth, spec.LengthMM, spec.Quantity)
		quote.Specifications = append(quote.Specifications, SpecificationQuote{
			Specification: spec,
			Cost:          cost,
			WeightKG:      w,
		})
		switch cost.Status {
		case pricing.StatusPriced:
			total += cost.Amount
			weight += w
		case pricing.StatusError:
			quote.Cost = cost
			return quote
		default:
			allPriced = false
		}
	}

	quote.WeightKG = weight
	if !allPriced {
		quote.Cost = pricing.Incomplete("specification not fully entered")
		return quote
	}
	quote.Cost = pricing.Priced(total)
	return quote
}
