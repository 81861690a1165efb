package scorer

// emaState is an incremental exponentially weighted moving average with
// span-based decay (alpha = 2/(span+1)). Weights cover the full observed
// history: the numerator/denominator recursion keeps early values from
// being over-weighted the way a plain seeded EMA would.
type emaState struct {
	alpha float64
	num   float64
	den   float64
}

func newEMA(span int) emaState {
	if span <= 1 {
		span = 1
	}
	return emaState{
		alpha: 2.0 / (float64(span) + 1),
	}
}

func (e *emaState) Update(price float64) {
	decay := 1 - e.alpha
	e.num = price + decay*e.num
	e.den = 1 + decay*e.den
}

func (e *emaState) Value() float64 {
	if e.den == 0 {
		return 0
	}
	return e.num / e.den
}
