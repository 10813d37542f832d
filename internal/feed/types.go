package feed

import (
	"errors"
	"time"
)

// ErrEmptyBatch is returned by Poll when the upstream answered with no
// usable records.
var ErrEmptyBatch = errors.New("feed: empty batch")

// #region payload
// Payload is one result as the upstream history endpoint serves it.
type Payload struct {
	SessionId  int64 `json:"SessionId"`
	FirstDice  int   `json:"FirstDice"`
	SecondDice int   `json:"SecondDice"`
	ThirdDice  int   `json:"ThirdDice"`
	DiceSum    int   `json:"DiceSum"`
	BetSide    *int  `json:"BetSide"` // 0 = Tai, 1 = Xiu, absent = by total
}

// #endregion payload

// #region config
// Config holds poller parameters.
type Config struct {
	URL        string
	Interval   time.Duration // between polls
	Timeout    time.Duration // per HTTP attempt
	Retries    int           // attempts per poll
	RetryDelay time.Duration
	UserAgent  string
}

// DefaultConfig returns the stock polling cadence. URL must be set.
func DefaultConfig() Config {
	return Config{
		Interval:   4 * time.Second,
		Timeout:    10 * time.Second,
		Retries:    3,
		RetryDelay: 2 * time.Second,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// #endregion config
