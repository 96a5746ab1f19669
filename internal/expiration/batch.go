package expiration

import (
	"time"

	"github.com/mscarn/paperbroker/internal/assets"
	"github.com/mscarn/paperbroker/internal/models"
)

// findExpiredPositions returns the positions whose symbol parses as an
// option expiring on or before processingDate, excluding zero-quantity
// rows. Plain stock rows and unparsable symbols are skipped silently.
// Comparison is at day granularity.
func findExpiredPositions(positions []*models.Position, processingDate time.Time) []*models.Position {
	cutoff := processingDate.UTC().Truncate(24 * time.Hour)
	var expired []*models.Position
	for _, p := range positions {
		if p.Quantity == 0 {
			continue
		}
		opt, err := assets.ParseOption(p.Symbol)
		if err != nil {
			continue
		}
		if !opt.Expiration.After(cutoff) {
			expired = append(expired, p)
		}
	}
	return expired
}

// underlyingGroup is one underlying's slice of expired option positions,
// in their original row order.
type underlyingGroup struct {
	underlying string
	positions  []*models.Position
}

// groupByUnderlying partitions expired option positions by underlying,
// preserving relative order of both groups and positions within a group.
func groupByUnderlying(expired []*models.Position) []underlyingGroup {
	index := make(map[string]int)
	var groups []underlyingGroup
	for _, p := range expired {
		opt, err := assets.ParseOption(p.Symbol)
		if err != nil {
			continue
		}
		i, ok := index[opt.Underlying]
		if !ok {
			i = len(groups)
			index[opt.Underlying] = i
			groups = append(groups, underlyingGroup{underlying: opt.Underlying})
		}
		groups[i].positions = append(groups[i].positions, p)
	}
	return groups
}

// equityPositions returns the plain-stock rows for an underlying with
// nonzero quantity, in row order. These are the deliverable (long) and
// coverable (short) inventory for assignment handling.
func equityPositions(positions []*models.Position, underlying string) []*models.Position {
	var equity []*models.Position
	for _, p := range positions {
		if p.Quantity == 0 || p.Symbol != underlying {
			continue
		}
		equity = append(equity, p)
	}
	return equity
}

// equityTotals sums long and short share counts across an underlying's
// equity rows. Short is returned as a non-negative magnitude.
func equityTotals(positions []*models.Position, underlying string) (long, short int) {
	for _, p := range equityPositions(positions, underlying) {
		if p.Quantity > 0 {
			long += p.Quantity
		} else {
			short += -p.Quantity
		}
	}
	return long, short
}
