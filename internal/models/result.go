package models

import "time"

// Event type tags on expiration event records.
const (
	EventExercise   = "exercise"
	EventAssignment = "assignment"
)

// Share source/destination labels on assignment events.
const (
	SharesFromExisting = "existing_position"
	SharesFromMarket   = "market_purchase"
	SharesToCoverShort = "cover_short"
	SharesToNewLong    = "new_long_position"
)

// ExerciseEvent records the effects of exercising a long option at
// expiration. Calls populate SharesAcquired/CashPaid, puts populate
// SharesSoldShort/CashReceived.
type ExerciseEvent struct {
	Type               string  `json:"type"`
	Symbol             string  `json:"symbol"`
	OptionType         string  `json:"option_type"`
	Quantity           int     `json:"quantity"`
	Strike             float64 `json:"strike"`
	SharesAcquired     int     `json:"shares_acquired,omitempty"`
	SharesSoldShort    int     `json:"shares_sold_short,omitempty"`
	CashPaid           float64 `json:"cash_paid,omitempty"`
	CashReceived       float64 `json:"cash_received,omitempty"`
	EffectiveCostBasis float64 `json:"effective_cost_basis"`
}

// AssignmentEvent records the effects of being assigned on a short option
// at expiration.
type AssignmentEvent struct {
	Type              string  `json:"type"`
	Symbol            string  `json:"symbol"`
	OptionType        string  `json:"option_type"`
	Quantity          int     `json:"quantity"`
	Strike            float64 `json:"strike"`
	SharesDelivered   int     `json:"shares_delivered,omitempty"`
	SharesPurchased   int     `json:"shares_purchased,omitempty"`
	SharesCovered     int     `json:"shares_covered,omitempty"`
	SharesSource      string  `json:"shares_source,omitempty"`
	SharesDestination string  `json:"shares_destination,omitempty"`
	CashReceived      float64 `json:"cash_received,omitempty"`
	CashPaid          float64 `json:"cash_paid,omitempty"`
	CashToBuy         float64 `json:"cash_to_buy,omitempty"`
	NetCash           float64 `json:"net_cash"`
	Warning           string  `json:"warning,omitempty"`
}

// WorthlessEvent records an option that expired out of the money.
type WorthlessEvent struct {
	Symbol         string  `json:"symbol"`
	IntrinsicValue float64 `json:"intrinsic_value"`
}

// ExpirationResult aggregates everything one expiration sweep did to the
// working copy of an account. Errors and Warnings are advisory; a non-empty
// Errors list means one or more underlyings were skipped, not that the
// sweep failed.
type ExpirationResult struct {
	RunID                string            `json:"run_id"`
	ProcessingDate       time.Time         `json:"processing_date"`
	ExpiredPositions     []Position        `json:"expired_positions"`
	NewPositions         []*Position       `json:"new_positions"`
	CashImpact           float64           `json:"cash_impact"`
	Exercises            []ExerciseEvent   `json:"exercises"`
	Assignments          []AssignmentEvent `json:"assignments"`
	WorthlessExpirations []WorthlessEvent  `json:"worthless_expirations"`
	Warnings             []string          `json:"warnings"`
	Errors               []string          `json:"errors"`
}

// EventCount returns the total number of exercise, assignment, and
// worthless events in the result.
func (r *ExpirationResult) EventCount() int {
	return len(r.Exercises) + len(r.Assignments) + len(r.WorthlessExpirations)
}
