package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// #region fixture-tests

// runFixture loads a fixture, replays it and checks the expected block.
func runFixture(t *testing.T, name string) (*Fixture, ReplaySummary) {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, final := Replay(f.ToRecords(), f.ToReplayConfig())
	sum := Summarize(results, final)

	if f.Expected.Scored > 0 && sum.Scored != f.Expected.Scored {
		t.Errorf("expected %d scored steps, got %d", f.Expected.Scored, sum.Scored)
	}
	if sum.Wins < f.Expected.MinWins {
		t.Errorf("expected at least %d wins, got %d", f.Expected.MinWins, sum.Wins)
	}
	if f.Expected.FinalCategory != "" && string(final.Prediction.Category) != f.Expected.FinalCategory {
		t.Errorf("expected final %s, got %s", f.Expected.FinalCategory, final.Prediction.Category)
	}
	return f, sum
}

// TestFixture_Alternating is the primary regression baseline: a strictly
// alternating stream should be called correctly on every pushed record.
func TestFixture_Alternating(t *testing.T) {
	_, sum := runFixture(t, "alternating.json")
	if sum.Losses != 0 {
		t.Fatalf("expected no losses, got %d", sum.Losses)
	}
	if sum.WinRate() != 100 {
		t.Fatalf("expected 100%% win rate, got %.2f", sum.WinRate())
	}
}

// TestFixture_BetSide replays explicit records where the upstream flag
// overrides the dice threshold.
func TestFixture_BetSide(t *testing.T) {
	f, sum := runFixture(t, "bet_side.json")

	records := f.ToRecords()
	if records[4].Total != 6 || records[4].Category != outcome.Tai {
		t.Fatalf("expected bet_side to force Tai on a total of 6, got %+v", records[4])
	}
	if records[0].Category != outcome.Xiu || records[1].Category != outcome.Tai {
		t.Fatalf("expected threshold classification, got %s %s", records[0].Category, records[1].Category)
	}
	if sum.Final.Stats.TotalPredictions != sum.Scored {
		t.Fatalf("ledger tallies %d differ from scored steps %d", sum.Final.Stats.TotalPredictions, sum.Scored)
	}

	cfg := f.ToReplayConfig()
	if cfg.Session.Ensemble.EMAAlpha != 0.2 || !cfg.Session.Ensemble.Parallel || cfg.Seed != 10 {
		t.Fatalf("fixture config not applied: %+v", cfg)
	}
	if cfg.Session.Ensemble.MinWeight != 0.001 {
		t.Fatalf("unset fields should keep defaults, got %f", cfg.Session.Ensemble.MinWeight)
	}
}

func TestSaveFixtureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	records := outcome.FromSymbols(40, "ttxxt")
	in := &Fixture{Description: "export", Seed: 2, Records: FromRecords(records)}

	if err := SaveFixture(path, in); err != nil {
		t.Fatalf("SaveFixture: %v", err)
	}
	out, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	got := out.ToRecords()
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i := range got {
		if got[i] != records[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, records[i], got[i])
		}
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLoadFixture_NegativeSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neg.json")
	if err := os.WriteFile(path, []byte(`{"seed": -1, "symbols": "tx"}`), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for negative seed")
	}
}

// #endregion fixture-tests
