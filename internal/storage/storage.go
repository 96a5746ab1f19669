package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mscarn/paperbroker/internal/models"
)

// JSONStorage is a mutex-guarded JSON file store for one account and its
// expiration run history. Saves write to a temp file and rename for
// atomicity.
type JSONStorage struct {
	mu       sync.RWMutex
	filepath string
	data     *storageData
}

type storageData struct {
	Account     *models.Account           `json:"account"`
	RunHistory  []models.ExpirationResult `json:"run_history"`
	LastUpdated time.Time                 `json:"last_updated"`
}

// NewJSONStorage opens (or initializes) a JSON storage file.
func NewJSONStorage(filepath string) (*JSONStorage, error) {
	s := &JSONStorage{
		filepath: filepath,
		data: &storageData{
			RunHistory: make([]models.ExpirationResult, 0),
		},
	}

	// Load existing data if file exists
	if _, err := os.Stat(filepath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("loading storage: %w", err)
		}
	}

	return s, nil
}

// Load reads the storage file into memory.
func (s *JSONStorage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return err
	}
	if s.data.RunHistory == nil {
		s.data.RunHistory = make([]models.ExpirationResult, 0)
	}
	return nil
}

// Save writes the in-memory state to disk atomically.
func (s *JSONStorage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *JSONStorage) saveLocked() error {
	s.data.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first, then atomic rename
	tmpFile := s.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpFile, s.filepath)
}

// GetAccount returns a deep copy of the stored account.
func (s *JSONStorage) GetAccount() (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.Account == nil {
		return nil, ErrNoAccount
	}
	return s.data.Account.Clone(), nil
}

// SetAccount replaces the stored account and persists.
func (s *JSONStorage) SetAccount(account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account == nil {
		return fmt.Errorf("account must be non-nil")
	}
	s.data.Account = account.Clone()
	return s.saveLocked()
}

// ApplyResult folds an expiration result into the stored account and
// appends the run to history.
func (s *JSONStorage) ApplyResult(result *models.ExpirationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result == nil {
		return fmt.Errorf("result must be non-nil")
	}
	if s.data.Account == nil {
		return ErrNoAccount
	}

	s.data.Account.CashBalance += result.CashImpact
	positions := make([]*models.Position, 0, len(result.NewPositions))
	for _, p := range result.NewPositions {
		positions = append(positions, p.Clone())
	}
	s.data.Account.Positions = positions

	s.data.RunHistory = append(s.data.RunHistory, *result)
	if len(s.data.RunHistory) > maxRunHistory {
		s.data.RunHistory = s.data.RunHistory[len(s.data.RunHistory)-maxRunHistory:]
	}

	return s.saveLocked()
}

// GetRunHistory returns a copy of the recorded expiration runs.
func (s *JSONStorage) GetRunHistory() []models.ExpirationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]models.ExpirationResult, len(s.data.RunHistory))
	copy(history, s.data.RunHistory)
	return history
}

// GetLastRun returns the most recent expiration run, or nil.
func (s *JSONStorage) GetLastRun() *models.ExpirationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data.RunHistory) == 0 {
		return nil
	}
	last := s.data.RunHistory[len(s.data.RunHistory)-1]
	return &last
}
