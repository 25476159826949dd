package model

import (
	"strings"
	"time"
)

// Quote 单个交易标的的最新模拟报价
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"` // single-step delta, recomputed each tick
	Timestamp     int64   `json:"ts_ms"`
}

// HistoryPoint 历史价格序列中的一个点（oldest first）
type HistoryPoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// Timeframe selects the span and resolution of a generated history series.
type Timeframe string

const (
	Timeframe1H  Timeframe = "1H"
	Timeframe1D  Timeframe = "1D"
	Timeframe1W  Timeframe = "1W"
	Timeframe1M  Timeframe = "1M"
	Timeframe1Y  Timeframe = "1Y"
	TimeframeAll Timeframe = "ALL"
)

// TimeframeSpec 时间范围对应的点数和间隔
type TimeframeSpec struct {
	Points   int
	Interval time.Duration
	Label    string // time.Format layout for point labels
}

var timeframeSpecs = map[Timeframe]TimeframeSpec{
	Timeframe1H:  {Points: 60, Interval: time.Minute, Label: "15:04"},
	Timeframe1D:  {Points: 24, Interval: time.Hour, Label: "15:04"},
	Timeframe1W:  {Points: 7, Interval: 24 * time.Hour, Label: "Jan 02"},
	Timeframe1M:  {Points: 30, Interval: 24 * time.Hour, Label: "Jan 02"},
	Timeframe1Y:  {Points: 12, Interval: 30 * 24 * time.Hour, Label: "Jan 2006"},
	TimeframeAll: {Points: 60, Interval: 90 * 24 * time.Hour, Label: "Jan 2006"},
}

// Spec returns the point count and interval for the timeframe.
// Unknown timeframes fall back to 1D.
func (tf Timeframe) Spec() TimeframeSpec {
	if s, ok := timeframeSpecs[tf]; ok {
		return s
	}
	return timeframeSpecs[Timeframe1D]
}

// ParseTimeframe 解析用户输入的时间范围（大小写不敏感）
func ParseTimeframe(s string) (Timeframe, bool) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	switch tf {
	case Timeframe1H, Timeframe1D, Timeframe1W, Timeframe1M, Timeframe1Y, TimeframeAll:
		return tf, true
	}
	return "", false
}
