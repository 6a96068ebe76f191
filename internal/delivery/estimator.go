package delivery

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/yarff/flashing-backend/internal/types"
)

// Transit estimation constants. referenceDays is the baseline for a shipment
// at a method's maximum distance; weightFactor scales the factory-fleet ETA by
// how full the truck is.
const (
	referenceDays = 1.0
	weightFactor  = 0.1
)

// ErrNoMethod means no active delivery method accommodates the shipment.
var ErrNoMethod = errors.New("no delivery method accommodates this shipment")

// EstimateDays computes the transit estimate for a shipment, floored at one
// day. An unknown method type is catalog misconfiguration and is fatal.
func EstimateDays(m *types.DeliveryMethod, distanceKM, weightKG float64) (int, error) {
	if m.MaxDistanceKM <= 0 {
		return 0, fmt.Errorf("delivery method %q has no max distance", m.Name)
	}

	switch m.MethodType {
	case types.MethodTypeFactory:
		if m.MaxWeightKG <= 0 {
			return 0, fmt.Errorf("delivery method %q has no max weight", m.Name)
		}
		est := (distanceKM / float64(m.MaxDistanceKM)) *
			(1 + weightFactor*(weightKG/m.MaxWeightKG)) * referenceDays
		return atLeastOneDay(est), nil

	case types.MethodTypeFreight:
		est := distanceKM/float64(m.MaxDistanceKM)*referenceDays + float64(m.ExtraDays)
		return atLeastOneDay(est), nil
	}

	return 0, fmt.Errorf("unknown delivery method type %q", m.MethodType)
}

// Cost prices a shipment against a method's rate card.
func Cost(m *types.DeliveryMethod, distanceKM, weightKG float64) float64 {
	return m.BaseCost + m.CostPerKG*weightKG + m.CostPerKM*distanceKM
}

// Select picks the delivery method for a shipment: active methods in ascending
// priority order, first one whose distance and weight limits both fit.
func Select(methods []*types.DeliveryMethod, distanceKM, weightKG float64) (*types.DeliveryMethod, error) {
	ranked := make([]*types.DeliveryMethod, 0, len(methods))
	for _, m := range methods {
		if m.IsActive {
			ranked = append(ranked, m)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority < ranked[j].Priority
	})

	for _, m := range ranked {
		if distanceKM <= float64(m.MaxDistanceKM) && weightKG <= m.MaxWeightKG {
			return m, nil
		}
	}
	return nil, ErrNoMethod
}

func atLeastOneDay(est float64) int {
	days := int(math.Ceil(est))
	if days < 1 {
		return 1
	}
	return days
}
