package expiration

import "github.com/mscarn/paperbroker/internal/models"

// drainFIFO consumes inventory for symbol across position rows in
// first-in-first-out row order. A positive delta drains long rows, a
// negative delta drains short rows (toward zero). Partial consumption
// reduces a row's quantity without deleting it; rows for other symbols are
// never touched. Returns the unsatisfied magnitude (0 if fully satisfied).
func drainFIFO(positions []*models.Position, symbol string, delta int) int {
	if delta == 0 {
		return 0
	}

	if delta > 0 {
		need := delta
		for _, p := range positions {
			if p.Symbol != symbol || p.Quantity <= 0 {
				continue
			}
			take := p.Quantity
			if take > need {
				take = need
			}
			p.Quantity -= take
			need -= take
			if need == 0 {
				break
			}
		}
		return need
	}

	need := -delta
	for _, p := range positions {
		if p.Symbol != symbol || p.Quantity >= 0 {
			continue
		}
		take := -p.Quantity
		if take > need {
			take = need
		}
		p.Quantity += take
		need -= take
		if need == 0 {
			break
		}
	}
	return need
}

// addPosition upserts inventory for symbol: the first existing row gets
// quantity += deltaQty with a weighted-average cost basis recomputation;
// if no row exists one is appended at fillPrice. When the resulting
// quantity is exactly zero the average is left untouched and the row is
// kept (end-of-sweep cleanup drops empty equity rows).
func addPosition(account *models.Account, symbol string, deltaQty int, fillPrice float64) *models.Position {
	for _, p := range account.Positions {
		if p.Symbol != symbol {
			continue
		}
		oldQty := p.Quantity
		newQty := oldQty + deltaQty
		p.Quantity = newQty
		if newQty != 0 {
			p.AvgPrice = (float64(oldQty)*p.AvgPrice + float64(deltaQty)*fillPrice) / float64(newQty)
		}
		return p
	}

	p := &models.Position{Symbol: symbol, Quantity: deltaQty, AvgPrice: fillPrice}
	account.Positions = append(account.Positions, p)
	return p
}
