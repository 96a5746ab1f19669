// Package storage persists the simulated brokerage account and its
// expiration run history as a single JSON document.
package storage

import (
	"errors"

	"github.com/mscarn/paperbroker/internal/models"
)

// ErrNoAccount is returned when the store holds no account yet.
var ErrNoAccount = errors.New("no account in storage")

// maxRunHistory bounds how many expiration runs are retained.
const maxRunHistory = 250

// Interface defines the contract for account persistence.
//
// Implementations must be safe for concurrent use - callers can assume all
// methods are goroutine-safe.
type Interface interface {
	// Account management
	GetAccount() (*models.Account, error)
	SetAccount(account *models.Account) error

	// ApplyResult persists the outcome of an expiration sweep: positions
	// are replaced with the result's NewPositions, cash is adjusted by
	// CashImpact, and the run is appended to history.
	ApplyResult(result *models.ExpirationResult) error

	// Data persistence
	Save() error
	Load() error

	// Run history
	GetRunHistory() []models.ExpirationResult
	GetLastRun() *models.ExpirationResult
}

// NewStorage creates a new storage implementation (currently JSON-based).
func NewStorage(filepath string) (Interface, error) {
	return NewJSONStorage(filepath)
}

// Ensure JSONStorage implements Interface.
var _ Interface = (*JSONStorage)(nil)
