package expiration

import (
	"testing"
	"time"

	"github.com/mscarn/paperbroker/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestFindExpiredPositions_Filtering(t *testing.T) {
	processing := mustDate(t, "2024-12-20")
	positions := []*models.Position{
		{Symbol: "SPY", Quantity: 100},                         // plain stock, skipped
		{Symbol: "SPY241220C00450000", Quantity: 2},            // expires today
		{Symbol: "SPY241220P00440000", Quantity: 0},            // zero quantity, skipped
		{Symbol: "SPY250117C00460000", Quantity: 1},            // future expiration
		{Symbol: "QQQ241213P00500000", Quantity: -3},           // already past expiration
		{Symbol: "NOT-AN-OPTION-SYMBOL-123", Quantity: 5},      // unparsable, skipped
	}

	expired := findExpiredPositions(positions, processing)
	if len(expired) != 2 {
		t.Fatalf("expired count = %d, want 2", len(expired))
	}
	if expired[0].Symbol != "SPY241220C00450000" || expired[1].Symbol != "QQQ241213P00500000" {
		t.Fatalf("unexpected expired symbols: %s, %s", expired[0].Symbol, expired[1].Symbol)
	}
}

func TestFindExpiredPositions_ZeroQuantityExcludedRegardlessOfDate(t *testing.T) {
	processing := mustDate(t, "2030-01-01")
	positions := []*models.Position{
		{Symbol: "SPY241220C00450000", Quantity: 0},
		{Symbol: "SPY200117P00300000", Quantity: 0},
	}
	if got := findExpiredPositions(positions, processing); len(got) != 0 {
		t.Fatalf("expected no expired positions, got %d", len(got))
	}
}

func TestGroupByUnderlying_PreservesOrder(t *testing.T) {
	expired := []*models.Position{
		{Symbol: "SPY241220C00450000", Quantity: 1},
		{Symbol: "QQQ241220P00500000", Quantity: -1},
		{Symbol: "SPY241220P00440000", Quantity: 2},
		{Symbol: "IWM241220C00220000", Quantity: 1},
	}

	groups := groupByUnderlying(expired)
	if len(groups) != 3 {
		t.Fatalf("group count = %d, want 3", len(groups))
	}
	wantOrder := []string{"SPY", "QQQ", "IWM"}
	for i, want := range wantOrder {
		if groups[i].underlying != want {
			t.Fatalf("group[%d] = %s, want %s", i, groups[i].underlying, want)
		}
	}
	if len(groups[0].positions) != 2 {
		t.Fatalf("SPY group size = %d, want 2", len(groups[0].positions))
	}
	if groups[0].positions[0].Symbol != "SPY241220C00450000" {
		t.Fatalf("SPY group order not preserved: %s first", groups[0].positions[0].Symbol)
	}
}

func TestEquityPositions_PlainStockRowsOnly(t *testing.T) {
	positions := []*models.Position{
		{Symbol: "SPY", Quantity: 300},
		{Symbol: "SPY241220C00450000", Quantity: 2},
		{Symbol: "SPY", Quantity: 0},
		{Symbol: "QQQ", Quantity: 100},
		{Symbol: "SPY", Quantity: -50},
	}

	equity := equityPositions(positions, "SPY")
	if len(equity) != 2 {
		t.Fatalf("equity rows = %d, want 2", len(equity))
	}
	long, short := equityTotals(positions, "SPY")
	if long != 300 || short != 50 {
		t.Fatalf("equityTotals = (%d, %d), want (300, 50)", long, short)
	}
}
