package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. Records
// may be given in full or, for hand-written fixtures, as a t/x string.
type Fixture struct {
	Description string          `json:"description"`
	Config      FixtureConfig   `json:"config"`
	Seed        int             `json:"seed"` // records passed to LoadInitial
	Symbols     string          `json:"symbols,omitempty"`
	Records     []FixtureRecord `json:"records,omitempty"`
	Expected    FixtureExpected `json:"expected"`
}

// FixtureRecord is one upstream result.
type FixtureRecord struct {
	Session int64  `json:"session"`
	Dice    [3]int `json:"dice"`
	BetSide *int   `json:"bet_side,omitempty"` // 0 = Tai, 1 = Xiu
}

// FixtureConfig overrides ensemble parameters. Zero values keep defaults.
type FixtureConfig struct {
	EMAAlpha      float64 `json:"ema_alpha,omitempty"`
	MinWeight     float64 `json:"min_weight,omitempty"`
	HistoryWindow int     `json:"history_window,omitempty"`
	Parallel      bool    `json:"parallel,omitempty"`
}

// FixtureExpected captures the regression baseline. Zero values are not
// checked.
type FixtureExpected struct {
	Scored        int    `json:"scored,omitempty"`
	MinWins       int    `json:"min_wins,omitempty"`
	FinalCategory string `json:"final_category,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Seed < 0 {
		return nil, fmt.Errorf("fixture %s: negative seed %d", path, f.Seed)
	}
	return &f, nil
}

// SaveFixture writes f as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToRecords converts the fixture's records to domain records. Symbols are
// used only when no explicit records are given; they start at session 1.
func (f *Fixture) ToRecords() []outcome.Record {
	if len(f.Records) == 0 {
		return outcome.FromSymbols(1, f.Symbols)
	}
	out := make([]outcome.Record, len(f.Records))
	for i, r := range f.Records {
		side := outcome.SideUnknown
		if r.BetSide != nil {
			switch *r.BetSide {
			case 0:
				side = outcome.SideTai
			case 1:
				side = outcome.SideXiu
			}
		}
		out[i] = outcome.New(r.Session, r.Dice, side)
	}
	return out
}

// FromRecords builds fixture records from domain records.
func FromRecords(records []outcome.Record) []FixtureRecord {
	out := make([]FixtureRecord, len(records))
	for i, r := range records {
		side := 0
		if r.Category == outcome.Xiu {
			side = 1
		}
		out[i] = FixtureRecord{Session: r.Session, Dice: r.Dice, BetSide: &side}
	}
	return out
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (f *Fixture) ToReplayConfig() ReplayConfig {
	config := DefaultReplayConfig()
	config.Seed = f.Seed

	ens := &config.Session.Ensemble
	if f.Config.EMAAlpha > 0 {
		ens.EMAAlpha = f.Config.EMAAlpha
	}
	if f.Config.MinWeight > 0 {
		ens.MinWeight = f.Config.MinWeight
		config.Session.Eval.MinWeight = f.Config.MinWeight
	}
	if f.Config.HistoryWindow > 0 {
		ens.HistoryWindow = f.Config.HistoryWindow
	}
	ens.Parallel = f.Config.Parallel
	return config
}

// #endregion fixture-loader
