package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// #region views
// PredictionView is the GetPrediction payload. Pointer fields are null while
// the session has no history.
type PredictionView struct {
	PreviousSession *int64  `json:"previous_session"`
	Dice            *[3]int `json:"dice"`
	Total           *int    `json:"total"`
	Result          string  `json:"result"`
	CurrentSession  *int64  `json:"current_session"`
	Prediction      string  `json:"prediction"`
	Confidence      string  `json:"confidence"`
}

// HistoryItem is one record as GetHistory reports it.
type HistoryItem struct {
	Session int64  `json:"session"`
	Dice    [3]int `json:"dice"`
	Total   int    `json:"total"`
	Result  string `json:"result"`
	Label   string `json:"tx_label"`
}

// HistoryView is the GetHistory payload, newest record first.
type HistoryView struct {
	Records []HistoryItem `json:"records"`
}

// StatsView is the GetStats payload.
type StatsView struct {
	TotalPredictions int    `json:"total_predictions"`
	TotalWins        int    `json:"total_wins"`
	TotalLosses      int    `json:"total_losses"`
	WinRate          string `json:"win_rate"`
	ActivePatterns   int    `json:"active_patterns"`
}

// OpinionView is one predictor's call on the current history.
type OpinionView struct {
	ID   string `json:"id"`
	Call string `json:"call"`
}

// WeightsView is the GetWeights payload. Opinions follow ensemble order.
type WeightsView struct {
	Weights  map[string]float64 `json:"weights"`
	Opinions []OpinionView      `json:"opinions"`
}

// #endregion views

// #region convert
const (
	// Waiting is the placeholder served before the first record arrives.
	Waiting = "waiting"
	// Abstain is the call reported for a predictor with no opinion.
	Abstain = "abstain"
)

func resultLabel(c outcome.Category) string {
	if c == outcome.Tai {
		return "tai"
	}
	return "xiu"
}

func historyItem(r outcome.Record) HistoryItem {
	return HistoryItem{
		Session: r.Session,
		Dice:    r.Dice,
		Total:   r.Total,
		Result:  resultLabel(r.Category),
		Label:   string(r.Category.Symbol()),
	}
}

// toStruct encodes a view as a protobuf Struct by way of its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal view: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal view: %w", err)
	}
	return structpb.NewStruct(m)
}

// fromStruct decodes a Struct into a view.
func fromStruct(s *structpb.Struct, v any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}

// #endregion convert
