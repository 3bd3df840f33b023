package strategy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is returned for an unrecognised preset name.
var ErrUnknownPreset = errors.New("unknown strategy preset")

// Preset names.
const (
	PresetDefault      = "default"
	PresetEarlySnipe   = "early_snipe"
	PresetConservative = "conservative"
	PresetAggressive   = "aggressive"
)

// Default returns the baseline parameter set.
func Default() Parameters {
	return Parameters{
		Name: PresetDefault,

		MinMarketCapUSD:             5_000,
		MaxMarketCapUSD:             300_000,
		MinHolders:                  10,
		MaxDevHoldPct:               15,
		RejectUpgradeable:           true,
		RejectFreezeAuthority:       true,
		MinScoreToBuy:               75,
		RequireMomentumOrGraduation: true,

		LowDevHoldBonus:              10,
		HighDevHoldPenaltyMultiplier: 4,
		LiquidityBonusDivisor:        1_000,
		SweetSpotMinUSD:              50_000,
		SweetSpotMaxUSD:              250_000,
		MarketCapSweetSpotBonus:      15,
		NearSweetSpotBonus:           5,
		MomentumBonus:                20,
		GraduationBonus:              25,
		UpgradeablePenalty:           20,
		FreezeAuthorityPenalty:       15,

		StopLossPct:           0.2,
		MinProfitTargetPct:    0.5,
		MaxProfitTargetPct:    1.0,
		LPSpikeExitMultiplier: 2.0,

		MaxPositions:       5,
		MaxSOLPerTrade:     0.5,
		StartingSOLBalance: 3.0,
		SOLUSDPrice:        30.0,
	}
}

// EarlySnipe catches tokens right at launch.
func EarlySnipe() Parameters {
	p := Default()
	p.Name = PresetEarlySnipe
	p.MinMarketCapUSD = 1_000
	p.MinHolders = 5
	p.MinScoreToBuy = 65
	return p
}

// Conservative targets safer, more established tokens.
func Conservative() Parameters {
	p := Default()
	p.Name = PresetConservative
	p.MinMarketCapUSD = 50_000
	p.MinHolders = 200
	p.MaxDevHoldPct = 10
	p.MinScoreToBuy = 80
	return p
}

// Aggressive loosens filters and allows more concurrent positions.
func Aggressive() Parameters {
	p := Default()
	p.Name = PresetAggressive
	p.MinMarketCapUSD = 2_000
	p.MinHolders = 3
	p.MaxDevHoldPct = 20
	p.MinScoreToBuy = 60
	p.MaxPositions = 10
	return p
}

var presets = map[string]func() Parameters{
	PresetDefault:      Default,
	PresetEarlySnipe:   EarlySnipe,
	PresetConservative: Conservative,
	PresetAggressive:   Aggressive,
}

// FromPreset returns a fresh copy of the named preset.
func FromPreset(name string) (Parameters, error) {
	build, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Parameters{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}

// PresetNames lists known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overlay decodes YAML from r on top of base. Keys absent from the document keep
// the base value; unknown keys are rejected. The result is validated.
func Overlay(base Parameters, r io.Reader) (Parameters, error) {
	p := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Parameters{}, fmt.Errorf("decode strategy overlay: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// OverlayFile applies the YAML file at path on top of base.
func OverlayFile(base Parameters, path string) (Parameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("open strategy overlay: %w", err)
	}
	defer f.Close()

	return Overlay(base, f)
}
