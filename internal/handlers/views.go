package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yarff/flashing-backend/internal/pricing"
	"github.com/yarff/flashing-backend/internal/services"
)

// JSON shapes for live quotes. Amounts are rendered as 0 with an explicit
// status so the frontend never mistakes "not priceable" for "free".

func costView(c pricing.CostResult) gin.H {
	view := gin.H{
		"status": c.Status.String(),
		"amount": 0.0,
	}
	if c.Status == pricing.StatusPriced {
		view["amount"] = pricing.Round2(c.Amount)
	}
	if c.Reason != "" {
		view["reason"] = c.Reason
	}
	return view
}

func flashingQuoteView(q services.FlashingQuote) gin.H {
	specs := make([]gin.H, 0, len(q.Specifications))
	for _, sq := range q.Specifications {
		specs = append(specs, gin.H{
			"id":       sq.Specification.ID,
			"quantity": sq.Specification.Quantity,
			"length":   sq.Specification.LengthMM,
			"cost":     costView(sq.Cost),
			"weight":   sq.WeightKG,
		})
	}
	return gin.H{
		"flashing":       q.Flashing,
		"specifications": specs,
		"cost":           costView(q.Cost),
		"weight":         q.WeightKG,
	}
}

func cartQuoteView(q services.CartQuote) gin.H {
	flashings := make([]gin.H, 0, len(q.Flashings))
	for _, fq := range q.Flashings {
		flashings = append(flashings, flashingQuoteView(fq))
	}
	return gin.H{
		"flashings":     flashings,
		"subtotal":      pricing.Round2(q.Subtotal),
		"delivery_cost": q.DeliveryCost,
		"total":         q.Total,
		"weight":        q.WeightKG,
		"complete":      q.Complete,
		"reasons":       q.Reasons,
	}
}
