// Package cart prices a list of cart lines. Nothing here is persisted; totals
// are recomputed from the lines on every call.
package cart

import "github.com/shopspring/decimal"

// GSTPercent is the flat tax applied to the subtotal.
const GSTPercent = 5

// Line is one entry in a customer's cart.
type Line struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int32
	IsVeg    bool
}

// Total returns price × quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

type Totals struct {
	Subtotal    decimal.Decimal
	GST         decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	ItemCount   int32
}

// Compute sums the lines. GST is rounded to whole rupees, half away from zero.
// Delivery is free.
func Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	var count int32
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
		count += l.Quantity
	}

	gst := GST(subtotal)
	fee := decimal.Zero
	return Totals{
		Subtotal:    subtotal,
		GST:         gst,
		DeliveryFee: fee,
		Total:       subtotal.Add(gst).Add(fee),
		ItemCount:   count,
	}
}

// GST returns the tax on subtotal in whole rupees.
func GST(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(GSTPercent)).Div(decimal.NewFromInt(100)).Round(0)
}

// Group merges lines that share a name and price, keeping the order in which
// each pair first appears.
func Group(lines []Line) []Line {
	grouped := make([]Line, 0, len(lines))
	for _, l := range lines {
		merged := false
		for i := range grouped {
			if grouped[i].Name == l.Name && grouped[i].Price.Equal(l.Price) {
				grouped[i].Quantity += l.Quantity
				merged = true
				break
			}
		}
		if !merged {
			grouped = append(grouped, l)
		}
	}
	return grouped
}
