package expiration

import (
	"github.com/mscarn/paperbroker/internal/assets"
	"github.com/mscarn/paperbroker/internal/models"
)

// positionOutcome is the resolution of a single expired option position.
// At most one of the event pointers is set; all nil means the position was
// not an option and resolved to a no-op.
type positionOutcome struct {
	exercise   *models.ExerciseEvent
	assignment *models.AssignmentEvent
	worthless  *models.WorthlessEvent
}

func (o positionOutcome) empty() bool {
	return o.exercise == nil && o.assignment == nil && o.worthless == nil
}

// resolvePosition decides the terminal state of one expired option
// position and applies its effects to the working account:
//
//	intrinsic <= 0              -> worthless, no cash or inventory change
//	intrinsic > 0, quantity > 0 -> exercised (long holder)
//	intrinsic > 0, quantity < 0 -> assigned  (short writer)
//
// Whatever the branch, the option row's quantity ends at zero. Symbols that
// fail to parse as options resolve to an empty no-op; the locator should
// have filtered them already.
func resolvePosition(account *models.Account, pos *models.Position, underlyingPrice float64) positionOutcome {
	opt, err := assets.ParseOption(pos.Symbol)
	if err != nil {
		return positionOutcome{}
	}

	intrinsic := opt.IntrinsicValue(underlyingPrice)
	if intrinsic <= 0 {
		pos.Quantity = 0
		return positionOutcome{worthless: &models.WorthlessEvent{
			Symbol:         pos.Symbol,
			IntrinsicValue: 0.0,
		}}
	}

	var out positionOutcome
	if pos.Quantity > 0 {
		ev := simulateExercise(account, opt, pos)
		out.exercise = &ev
	} else {
		ev := simulateAssignment(account, opt, pos, underlyingPrice)
		out.assignment = &ev
	}
	pos.Quantity = 0
	return out
}
