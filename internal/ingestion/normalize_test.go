package ingestion

import (
	"testing"
)

func TestNormalize_ParsesNumbers(t *testing.T) {
	creator := testWallet(t, 7)
	obs := Normalize(RawListing{
		TokenAddress: " Mint111 ",
		Category:     "pumpfun",
		PriceUSD:     "0.00012",
		LiquidityUSD: "4500.5",
		MarketCapUSD: "120000",
		Creator:      creator,
	})

	if obs.ID != "Mint111" {
		t.Errorf("ID = %q", obs.ID)
	}
	if obs.Category != "pumpfun" {
		t.Errorf("Category = %q", obs.Category)
	}
	if obs.BasePrice != 0.00012 || obs.LiquidityUSD != 4500.5 || obs.MarketCapUSD != 120000 {
		t.Errorf("unexpected numbers: %+v", obs)
	}
	if obs.DevWalletAddress == nil || *obs.DevWalletAddress != creator {
		t.Errorf("DevWalletAddress = %v, want %s", obs.DevWalletAddress, creator)
	}
	if obs.Momentum || obs.Graduation {
		t.Error("signals must not be derived by Normalize")
	}
}

func TestNormalize_MissingAndMalformedDefaultToZero(t *testing.T) {
	obs := Normalize(RawListing{
		TokenAddress: "Mint222",
		PriceUSD:     "n/a",
		LiquidityUSD: "",
		MarketCapUSD: "-5",
		Creator:      "not-an-address",
	})

	if obs.BasePrice != 0 || obs.LiquidityUSD != 0 || obs.MarketCapUSD != 0 {
		t.Errorf("expected zero numbers, got %+v", obs)
	}
	if obs.Category != CategoryUnknown {
		t.Errorf("Category = %q, want %q", obs.Category, CategoryUnknown)
	}
	if obs.DevWalletAddress != nil {
		t.Errorf("invalid creator should be dropped, got %q", *obs.DevWalletAddress)
	}
	if obs.HolderCount != 0 || obs.DevHoldPct != 0 || obs.Upgradeable || obs.FreezeAuthority {
		t.Errorf("expected zero defaults, got %+v", obs)
	}
}

func TestApplyEnrichment_CreatorShare(t *testing.T) {
	creator := testWallet(t, 1)
	other := testWallet(t, 2)
	obs := Normalize(RawListing{TokenAddress: "Mint", Creator: creator})

	obs = ApplyEnrichment(obs, Enrichment{
		Holders: &HolderStats{Total: 321},
		TopHolders: []TopHolder{
			{OwnerAddress: other, PercentOfSupply: 30},
			{OwnerAddress: creator, PercentOfSupply: 4.5},
		},
		Metadata: &TokenMetadata{FreezeAuthority: other, IsMutable: true},
	})

	if obs.HolderCount != 321 {
		t.Errorf("HolderCount = %d", obs.HolderCount)
	}
	if obs.DevHoldPct != 4.5 {
		t.Errorf("DevHoldPct = %v, want 4.5", obs.DevHoldPct)
	}
	if !obs.FreezeAuthority || !obs.Upgradeable {
		t.Errorf("metadata flags not applied: %+v", obs)
	}
}

func TestApplyEnrichment_FirstWalletHolderSkipsProgramAccounts(t *testing.T) {
	curve := testProgramAddress(t)
	wallet := testWallet(t, 3)
	obs := Normalize(RawListing{TokenAddress: "Mint"})

	obs = ApplyEnrichment(obs, Enrichment{
		TopHolders: []TopHolder{
			{OwnerAddress: curve, PercentOfSupply: 80},
			{OwnerAddress: wallet, PercentOfSupply: 12},
		},
	})

	if obs.DevHoldPct != 12 {
		t.Errorf("DevHoldPct = %v, want 12", obs.DevHoldPct)
	}
	if obs.DevWalletAddress == nil || *obs.DevWalletAddress != wallet {
		t.Errorf("DevWalletAddress = %v, want %s", obs.DevWalletAddress, wallet)
	}
}

func TestApplyEnrichment_CreatorNotInTopHolders(t *testing.T) {
	creator := testWallet(t, 4)
	obs := Normalize(RawListing{TokenAddress: "Mint", Creator: creator})
	obs = ApplyEnrichment(obs, Enrichment{
		TopHolders: []TopHolder{{OwnerAddress: testWallet(t, 5), PercentOfSupply: 40}},
	})
	if obs.DevHoldPct != 0 {
		t.Errorf("DevHoldPct = %v, want 0", obs.DevHoldPct)
	}
}

func TestApplyEnrichment_PairFillsOnlyMissingPriceAndCap(t *testing.T) {
	obs := Normalize(RawListing{TokenAddress: "Mint", MarketCapUSD: "90000"})
	obs = ApplyEnrichment(obs, Enrichment{
		Pair: &PairInfo{LiquidityUSD: f64(3000), PriceUSD: f64(0.002), MarketCapUSD: f64(150000), OnRaydium: true},
	})

	if obs.LiquidityUSD != 3000 {
		t.Errorf("LiquidityUSD = %v", obs.LiquidityUSD)
	}
	if obs.BasePrice != 0.002 {
		t.Errorf("BasePrice = %v, want pair price", obs.BasePrice)
	}
	if obs.MarketCapUSD != 90000 {
		t.Errorf("MarketCapUSD = %v, listing value should win", obs.MarketCapUSD)
	}
	if !obs.RaydiumLPDetected {
		t.Error("RaydiumLPDetected should be set")
	}
}

func TestPreferPairQuotes(t *testing.T) {
	obs := Normalize(RawListing{TokenAddress: "Mint", PriceUSD: "0.000003", MarketCapUSD: "3000", SOLQuoted: true})

	got := PreferPairQuotes(obs, &PairInfo{PriceUSD: f64(0.00001), MarketCapUSD: f64(9500), LiquidityUSD: f64(4000)})
	if got.MarketCapUSD != 9500 || got.BasePrice != 0.00001 {
		t.Errorf("pair quote not preferred: cap=%v price=%v", got.MarketCapUSD, got.BasePrice)
	}
	if got.LiquidityUSD != 4000 {
		t.Errorf("LiquidityUSD = %v, want 4000", got.LiquidityUSD)
	}

	partial := PreferPairQuotes(obs, &PairInfo{LiquidityUSD: f64(4000)})
	if partial.MarketCapUSD != 3000 || partial.BasePrice != 0.000003 {
		t.Errorf("missing pair quote should keep listing values: cap=%v price=%v", partial.MarketCapUSD, partial.BasePrice)
	}

	if PreferPairQuotes(obs, nil) != obs {
		t.Error("nil pair changed observation")
	}
}

func TestApplyEnrichment_EmptyLeavesDefaults(t *testing.T) {
	before := Normalize(RawListing{TokenAddress: "Mint", MarketCapUSD: "1000"})
	after := ApplyEnrichment(before, Enrichment{})
	if before != after {
		t.Errorf("empty enrichment changed observation: %+v -> %+v", before, after)
	}
}

func TestApplyEnrichment_ClampsDevPct(t *testing.T) {
	wallet := testWallet(t, 9)
	obs := ApplyEnrichment(Normalize(RawListing{TokenAddress: "Mint"}), Enrichment{
		TopHolders: []TopHolder{{OwnerAddress: wallet, PercentOfSupply: 140}},
	})
	if obs.DevHoldPct != 100 {
		t.Errorf("DevHoldPct = %v, want 100", obs.DevHoldPct)
	}
}

func TestDeriveSignals(t *testing.T) {
	th := DefaultSignalThresholds()
	tests := []struct {
		name           string
		mc, liq        float64
		wantMomentum   bool
		wantGraduation bool
	}{
		{"thin liquidity", 100000, 1000, false, false},
		{"momentum only", 20000, 1500, true, false},
		{"graduated lower bound", 50000, 1001, true, true},
		{"graduated upper bound", 300000, 5000, true, true},
		{"above band", 300001, 5000, true, false},
		{"in band without liquidity", 100000, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := Normalize(RawListing{TokenAddress: "Mint"})
			obs.MarketCapUSD, obs.LiquidityUSD = tt.mc, tt.liq
			obs = DeriveSignals(obs, th)
			if obs.Momentum != tt.wantMomentum {
				t.Errorf("Momentum = %v, want %v", obs.Momentum, tt.wantMomentum)
			}
			if obs.Graduation != tt.wantGraduation {
				t.Errorf("Graduation = %v, want %v", obs.Graduation, tt.wantGraduation)
			}
		})
	}
}

func TestApplyRefresh(t *testing.T) {
	th := DefaultSignalThresholds()
	prev := Normalize(RawListing{TokenAddress: "Mint", MarketCapUSD: "100000", LiquidityUSD: "2000", PriceUSD: "0.1"})
	prev.HolderCount = 250
	prev = DeriveSignals(prev, th)

	if got := ApplyRefresh(prev, nil, th); got != prev {
		t.Errorf("nil refresh changed observation")
	}

	next := ApplyRefresh(prev, &PairInfo{LiquidityUSD: f64(500), MarketCapUSD: f64(400000), PriceUSD: f64(0.4)}, th)
	if next.MarketCapUSD != 400000 || next.LiquidityUSD != 500 || next.BasePrice != 0.4 {
		t.Errorf("refresh not applied: %+v", next)
	}
	if next.Momentum || next.Graduation {
		t.Errorf("signals should be recomputed: %+v", next)
	}
	if next.HolderCount != 250 {
		t.Errorf("HolderCount should carry over, got %d", next.HolderCount)
	}
	if prev.MarketCapUSD != 100000 {
		t.Error("previous observation was mutated")
	}
}
