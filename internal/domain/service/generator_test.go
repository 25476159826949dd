package service

import (
	"math"
	"testing"

	"papertrade/internal/domain/model"
)

func TestGeneratorDeterministicWithFixedSeed(t *testing.T) {
	base := map[string]float64{"AAPL": 175.50}
	g1 := NewGenerator(DefaultGeneratorParams(), base, 42)
	g2 := NewGenerator(DefaultGeneratorParams(), base, 42)

	q1 := g1.GenerateQuote("AAPL")
	q2 := g2.GenerateQuote("AAPL")
	if q1.Price != q2.Price || q1.ChangePercent != q2.ChangePercent {
		t.Fatalf("same seed produced different quotes: %v vs %v", q1, q2)
	}

	for i := 0; i < 20; i++ {
		q1 = g1.AdvanceQuote(q1)
		q2 = g2.AdvanceQuote(q2)
		if q1.Price != q2.Price {
			t.Fatalf("diverged at step %d: %v vs %v", i, q1.Price, q2.Price)
		}
	}
}

func TestGenerateQuoteStaysNearBasePrice(t *testing.T) {
	g := NewGenerator(DefaultGeneratorParams(), map[string]float64{"aapl": 100}, 1)

	q := g.GenerateQuote("AAPL")
	if q.Symbol != "AAPL" {
		t.Errorf("expected uppercased symbol, got %q", q.Symbol)
	}
	// initial jitter is bounded by volatility
	if q.Price < 98 || q.Price > 102 {
		t.Errorf("expected price within 2%% of base 100, got %v", q.Price)
	}
	if q.ChangePercent < -2.5 || q.ChangePercent > 2.5 {
		t.Errorf("expected initial change within ±2.5%%, got %v", q.ChangePercent)
	}
	if q.Timestamp == 0 {
		t.Error("expected non-zero timestamp")
	}
}

func TestGenerateQuoteUnknownSymbolGetsStableFallback(t *testing.T) {
	g := NewGenerator(DefaultGeneratorParams(), nil, 7)

	q1 := g.GenerateQuote("ZZZZ")
	q2 := g.GenerateQuote("ZZZZ")

	if q1.Price <= 0 || q2.Price <= 0 {
		t.Fatalf("expected positive fallback prices, got %v, %v", q1.Price, q2.Price)
	}
	// both quotes jitter around the same remembered base price
	ratio := q1.Price / q2.Price
	if ratio < 0.9 || ratio > 1.1 {
		t.Errorf("fallback base not stable across calls: %v vs %v", q1.Price, q2.Price)
	}
}

func TestAdvanceQuoteClampsToFloor(t *testing.T) {
	params := DefaultGeneratorParams()
	params.PriceFloor = 5.0
	g := NewGenerator(params, nil, 3)

	prev := model.Quote{Symbol: "AAPL", Price: 1.0, Timestamp: 1}
	q := g.AdvanceQuote(prev)
	if q.Price != 5.0 {
		t.Errorf("expected price clamped to floor 5.0, got %v", q.Price)
	}
}

func TestAdvanceQuoteChangePercentMatchesPrices(t *testing.T) {
	g := NewGenerator(DefaultGeneratorParams(), map[string]float64{"AAPL": 100}, 11)

	prev := g.GenerateQuote("AAPL")
	for i := 0; i < 10; i++ {
		q := g.AdvanceQuote(prev)
		want := (q.Price - prev.Price) / prev.Price * 100
		if math.Abs(q.ChangePercent-want) > 1e-9 {
			t.Fatalf("step %d: change percent %v does not match prices (want %v)", i, q.ChangePercent, want)
		}
		prev = q
	}
}

func TestGenerateHistoryAnchorsToCurrentPrice(t *testing.T) {
	g := NewGenerator(DefaultGeneratorParams(), map[string]float64{"AAPL": 100}, 5)

	for _, tf := range []model.Timeframe{
		model.Timeframe1H, model.Timeframe1D, model.Timeframe1W,
		model.Timeframe1M, model.Timeframe1Y, model.TimeframeAll,
	} {
		points := g.GenerateHistory("AAPL", 123.45, tf)
		spec := tf.Spec()
		if len(points) != spec.Points {
			t.Fatalf("%s: expected %d points, got %d", tf, spec.Points, len(points))
		}
		if last := points[len(points)-1].Close; last != 123.45 {
			t.Errorf("%s: expected final point anchored to 123.45, got %v", tf, last)
		}
		for i, p := range points {
			if p.Close <= 0 {
				t.Errorf("%s: point %d has non-positive close %v", tf, i, p.Close)
			}
			if p.Date == "" {
				t.Errorf("%s: point %d has empty date label", tf, i)
			}
		}
	}
}

func TestGenerateHistoryFallsBackToBasePrice(t *testing.T) {
	g := NewGenerator(DefaultGeneratorParams(), map[string]float64{"AAPL": 200}, 9)

	points := g.GenerateHistory("AAPL", 0, model.Timeframe1D)
	if last := points[len(points)-1].Close; last != 200 {
		t.Errorf("expected series anchored to base 200 when no live price, got %v", last)
	}
}
