package expiration

import (
	"github.com/mscarn/paperbroker/internal/assets"
	"github.com/mscarn/paperbroker/internal/models"
)

// simulateExercise applies the cash and inventory effects of exercising a
// long option position at expiration.
//
// A long call buys 100 shares per contract at the strike; the new stock
// lots carry an effective basis of strike plus the premium paid. A long
// put sells 100 shares per contract short at the strike; the short lots
// carry an effective basis of strike minus the premium.
func simulateExercise(account *models.Account, opt *assets.Option, pos *models.Position) models.ExerciseEvent {
	contracts := pos.Quantity
	shares := contracts * models.SharesPerContract
	premium := pos.AvgPrice
	cash := opt.Strike * float64(shares)

	ev := models.ExerciseEvent{
		Type:       models.EventExercise,
		Symbol:     pos.Symbol,
		OptionType: string(opt.Type),
		Quantity:   contracts,
		Strike:     opt.Strike,
	}

	switch opt.Type {
	case assets.Call:
		account.CashBalance -= cash
		basis := opt.Strike + premium
		addPosition(account, opt.Underlying, shares, basis)
		ev.SharesAcquired = shares
		ev.CashPaid = cash
		ev.EffectiveCostBasis = basis
	case assets.Put:
		account.CashBalance += cash
		basis := opt.Strike - premium
		addPosition(account, opt.Underlying, -shares, basis)
		ev.SharesSoldShort = shares
		ev.CashReceived = cash
		ev.EffectiveCostBasis = basis
	}
	return ev
}
