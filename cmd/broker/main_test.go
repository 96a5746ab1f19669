package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mscarn/paperbroker/internal/config"
	"github.com/mscarn/paperbroker/internal/expiration"
	"github.com/mscarn/paperbroker/internal/models"
	"github.com/mscarn/paperbroker/internal/quotes"
	"github.com/mscarn/paperbroker/internal/storage"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestBuildProvider(t *testing.T) {
	logger := quietLogger()

	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
		check   func(t *testing.T, p quotes.Provider)
	}{
		{
			name: "static provider",
			cfg: &config.Config{Quotes: config.QuotesConfig{
				Provider: "static",
				Prices:   map[string]float64{"SPY": 450},
			}},
			check: func(t *testing.T, p quotes.Provider) {
				assert.IsType(t, &quotes.StaticProvider{}, p)
			},
		},
		{
			name: "http provider",
			cfg: &config.Config{Quotes: config.QuotesConfig{
				Provider:    "http",
				APIKey:      "k",
				APIEndpoint: "https://example.test/v1",
			}},
			check: func(t *testing.T, p quotes.Provider) {
				assert.IsType(t, &quotes.HTTPProvider{}, p)
			},
		},
		{
			name: "circuit breaker wrapping",
			cfg: &config.Config{Quotes: config.QuotesConfig{
				Provider:          "static",
				Prices:            map[string]float64{"SPY": 450},
				UseCircuitBreaker: true,
			}},
			check: func(t *testing.T, p quotes.Provider) {
				assert.IsType(t, &quotes.CircuitBreakerProvider{}, p)
			},
		},
		{
			name:    "unknown provider",
			cfg:     &config.Config{Quotes: config.QuotesConfig{Provider: "csv"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := buildProvider(tt.cfg, logger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestRunSweep_AppliesResult(t *testing.T) {
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "account.json"))
	require.NoError(t, err)

	require.NoError(t, store.SetAccount(&models.Account{
		ID:          "acct-1",
		CashBalance: 10000,
		Positions: []*models.Position{
			{Symbol: "SPY241220C00140000", Quantity: 2, AvgPrice: 8.0},
		},
	}))

	provider := quotes.NewStaticProvider(map[string]float64{"SPY": 150})
	engine := expiration.NewEngine(provider, expiration.Config{Logger: quietLogger()})

	date, err := time.Parse("2006-01-02", "2024-12-20")
	require.NoError(t, err)
	require.NoError(t, runSweep(context.Background(), engine, store, date, quietLogger()))

	acct, err := store.GetAccount()
	require.NoError(t, err)
	assert.InDelta(t, -18000.0, acct.CashBalance, 1e-9)

	var equity *models.Position
	for _, p := range acct.Positions {
		if p.Symbol == "SPY" {
			equity = p
		}
	}
	require.NotNil(t, equity, "expected a new SPY equity position")
	assert.Equal(t, 200, equity.Quantity)
	assert.InDelta(t, 148.0, equity.AvgPrice, 1e-9)

	history := store.GetRunHistory()
	require.Len(t, history, 1)
	assert.Len(t, history[0].Exercises, 1)
}

func TestRunSweep_NoExpirationsLeavesStorageUntouched(t *testing.T) {
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "account.json"))
	require.NoError(t, err)

	require.NoError(t, store.SetAccount(&models.Account{
		ID:          "acct-1",
		CashBalance: 10000,
		Positions: []*models.Position{
			{Symbol: "SPY", Quantity: 100, AvgPrice: 440},
		},
	}))

	provider := quotes.NewStaticProvider(map[string]float64{"SPY": 450})
	engine := expiration.NewEngine(provider, expiration.Config{Logger: quietLogger()})

	require.NoError(t, runSweep(context.Background(), engine, store, time.Now().UTC(), quietLogger()))

	assert.Empty(t, store.GetRunHistory())
	acct, err := store.GetAccount()
	require.NoError(t, err)
	assert.Equal(t, 10000.0, acct.CashBalance)
}

func TestRunSweep_MissingAccount(t *testing.T) {
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "account.json"))
	require.NoError(t, err)

	provider := quotes.NewStaticProvider(nil)
	engine := expiration.NewEngine(provider, expiration.Config{Logger: quietLogger()})

	err = runSweep(context.Background(), engine, store, time.Now().UTC(), quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNoAccount)
}
