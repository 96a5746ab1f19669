package expiration

import (
	"fmt"

	"github.com/mscarn/paperbroker/internal/assets"
	"github.com/mscarn/paperbroker/internal/models"
)

// simulateAssignment applies the cash and inventory effects of being
// assigned on a short option position at expiration. Assignment on an ITM
// expiration is treated as certain.
//
// A short call must deliver 100 shares per contract at the strike:
// existing long inventory is drained FIFO first, and any shortfall is
// bought at the current market price, which surfaces as a warning on the
// event. A short put must buy 100 shares per contract at the strike:
// existing short inventory is covered first, with any remainder becoming
// or extending a long position at the strike.
func simulateAssignment(
	account *models.Account, opt *assets.Option, pos *models.Position, marketPrice float64,
) models.AssignmentEvent {
	contracts := -pos.Quantity
	shares := contracts * models.SharesPerContract

	ev := models.AssignmentEvent{
		Type:       models.EventAssignment,
		Symbol:     pos.Symbol,
		OptionType: string(opt.Type),
		Quantity:   contracts,
		Strike:     opt.Strike,
	}

	switch opt.Type {
	case assets.Call:
		shortfall := drainFIFO(account.Positions, opt.Underlying, shares)
		cashReceived := opt.Strike * float64(shares)
		account.CashBalance += cashReceived
		ev.SharesDelivered = shares
		ev.CashReceived = cashReceived
		if shortfall > 0 {
			cashToBuy := float64(shortfall) * marketPrice
			account.CashBalance -= cashToBuy
			ev.CashToBuy = cashToBuy
			ev.SharesSource = models.SharesFromMarket
			ev.Warning = fmt.Sprintf(
				"assignment on %s: only %d of %d %s shares held, bought %d at market %.2f",
				pos.Symbol, shares-shortfall, shares, opt.Underlying, shortfall, marketPrice)
		} else {
			ev.SharesSource = models.SharesFromExisting
		}
		ev.NetCash = cashReceived - ev.CashToBuy

	case assets.Put:
		cashPaid := opt.Strike * float64(shares)
		account.CashBalance -= cashPaid
		remainder := drainFIFO(account.Positions, opt.Underlying, -shares)
		ev.SharesPurchased = shares
		ev.SharesCovered = shares - remainder
		ev.CashPaid = cashPaid
		ev.NetCash = -cashPaid
		if remainder > 0 {
			addPosition(account, opt.Underlying, remainder, opt.Strike)
			ev.SharesDestination = models.SharesToNewLong
		} else {
			ev.SharesDestination = models.SharesToCoverShort
		}
	}
	return ev
}
