package service

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"papertrade/internal/domain/model"
)

// GeneratorParams 价格模拟参数（统一配置，不保留多套常量）
type GeneratorParams struct {
	Volatility float64 // per-step uniform noise scale
	Momentum   float64 // weight of the previous step's delta, 0 < m <= 1
	Trend      float64 // constant upward drift per step
	JumpProb   float64 // probability of a news-style shock per step
	JumpMax    float64 // maximum shock magnitude (fraction)
	PriceFloor float64 // prices never go below this
}

// DefaultGeneratorParams returns the canonical parameter set.
func DefaultGeneratorParams() GeneratorParams {
	return GeneratorParams{
		Volatility: 0.02,
		Momentum:   0.7,
		Trend:      0.0001,
		JumpProb:   0.03,
		JumpMax:    0.05,
		PriceFloor: 0.01,
	}
}

const jumpMin = 0.01

// Generator produces synthetic quotes and history series without any real
// market feed. The momentum term makes successive steps serially correlated,
// which requires keeping the last step's delta per symbol across calls.
// All methods are safe for concurrent use; with a fixed seed and a fixed
// call sequence the output is fully deterministic.
type Generator struct {
	mu        sync.Mutex
	params    GeneratorParams
	rng       *rand.Rand
	base      map[string]float64 // configured base price per symbol
	lastDelta map[string]float64 // symbol -> previous step's price-change fraction
	now       func() time.Time
}

// NewGenerator creates a generator with the given base-price table and seed.
func NewGenerator(params GeneratorParams, base map[string]float64, seed int64) *Generator {
	norm := make(map[string]float64, len(base))
	for sym, p := range base {
		u := strings.ToUpper(strings.TrimSpace(sym))
		if u == "" || p <= 0 {
			continue
		}
		norm[u] = p
	}
	return &Generator{
		params:    params,
		rng:       rand.New(rand.NewSource(seed)),
		base:      norm,
		lastDelta: make(map[string]float64),
		now:       time.Now,
	}
}

// GenerateQuote 生成一个标的的初始报价。未知标的回退到 [50, 500) 的随机基价，
// 因此对任何符号都不会失败。
func (g *Generator) GenerateQuote(symbol string) model.Quote {
	u := strings.ToUpper(strings.TrimSpace(symbol))

	g.mu.Lock()
	defer g.mu.Unlock()

	basePrice, ok := g.base[u]
	if !ok {
		basePrice = 50 + g.rng.Float64()*450
		g.base[u] = basePrice // keep the fallback stable across restarts of the loop
	}

	jitter := (g.rng.Float64()*2 - 1) * g.params.Volatility
	price := basePrice * (1 + jitter)
	if price < g.params.PriceFloor {
		price = g.params.PriceFloor
	}

	change := (g.rng.Float64()*2 - 1) * 2.5 // bounded initial change percent
	g.lastDelta[u] = change / 100

	return model.Quote{
		Symbol:        u,
		Price:         price,
		ChangePercent: change,
		Timestamp:     g.now().UnixMilli(),
	}
}

// AdvanceQuote computes the next quote from the previous one. The step is the
// sum of four components: uniform noise scaled by volatility, the previous
// step's delta scaled by momentum, a constant trend, and a rare jump shock.
// The resulting price is clamped to the configured floor so compounding
// shocks can never drive it to zero or negative.
func (g *Generator) AdvanceQuote(prev model.Quote) model.Quote {
	u := strings.ToUpper(strings.TrimSpace(prev.Symbol))

	g.mu.Lock()
	defer g.mu.Unlock()

	delta := g.step(u)
	price := prev.Price * (1 + delta)
	if price < g.params.PriceFloor {
		price = g.params.PriceFloor
	}

	changeFrac := 0.0
	if prev.Price > 0 {
		changeFrac = (price - prev.Price) / prev.Price
	}
	g.lastDelta[u] = changeFrac

	return model.Quote{
		Symbol:        u,
		Price:         price,
		ChangePercent: changeFrac * 100,
		Timestamp:     g.now().UnixMilli(),
	}
}

// step draws one composite price-change fraction. Caller holds g.mu.
func (g *Generator) step(symbol string) float64 {
	noise := (g.rng.Float64()*2 - 1) * g.params.Volatility
	momentum := g.params.Momentum * g.lastDelta[symbol]
	delta := noise + momentum + g.params.Trend

	if g.rng.Float64() < g.params.JumpProb {
		mag := jumpMin + g.rng.Float64()*(g.params.JumpMax-jumpMin)
		if g.rng.Float64() < 0.5 {
			mag = -mag
		}
		delta += mag
	}
	return delta
}

// GenerateHistory 按时间范围重新生成整条历史序列：从合成起点向当前价随机游走，
// 最后一个点强制锚定为 currentPrice。currentPrice <= 0 时用基价代替。
func (g *Generator) GenerateHistory(symbol string, currentPrice float64, tf model.Timeframe) []model.HistoryPoint {
	u := strings.ToUpper(strings.TrimSpace(symbol))
	spec := tf.Spec()

	g.mu.Lock()
	defer g.mu.Unlock()

	if currentPrice <= 0 {
		if b, ok := g.base[u]; ok {
			currentPrice = b
		} else {
			currentPrice = 50 + g.rng.Float64()*450
		}
	}
	if currentPrice < g.params.PriceFloor {
		currentPrice = g.params.PriceFloor
	}

	n := spec.Points
	start := currentPrice * (0.85 + g.rng.Float64()*0.3)
	if start < g.params.PriceFloor {
		start = g.params.PriceFloor
	}

	// per-step drift that walks the series from start toward the live quote
	drift := math.Pow(currentPrice/start, 1/float64(n)) - 1

	points := make([]model.HistoryPoint, 0, n)
	end := g.now()
	price := start
	last := 0.0
	for i := 0; i < n; i++ {
		ts := end.Add(-spec.Interval * time.Duration(n-1-i))

		if i == n-1 {
			price = currentPrice // anchor the series to the live quote
		} else if i > 0 {
			noise := (g.rng.Float64()*2 - 1) * g.params.Volatility
			stepDelta := drift + noise + g.params.Momentum*last
			next := price * (1 + stepDelta)
			if next < g.params.PriceFloor {
				next = g.params.PriceFloor
			}
			last = (next - price) / price
			price = next
		}

		points = append(points, model.HistoryPoint{
			Date:  ts.Format(spec.Label),
			Close: price,
		})
	}
	return points
}
