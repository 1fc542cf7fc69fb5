// Package tempo predicts the next clock interval from the ones seen so far.
package tempo

import "time"

// history is how many intervals are averaged.
const history = 4

// Predictor keeps a short window of clock intervals.
//
// An interval that differs from the running prediction by more than half
// is treated as a tempo change and restarts the window.
type Predictor struct {
	window [history]time.Duration
	n      int
	next   int
}

// Predict records interval and returns the expected next interval.
// Zero or negative intervals are not recorded.
func (p *Predictor) Predict(interval time.Duration) time.Duration {
	if interval <= 0 {
		return p.predicted()
	}
	if pred := p.predicted(); pred > 0 {
		diff := interval - pred
		if diff < 0 {
			diff = -diff
		}
		if diff > pred/2 {
			p.Reset()
		}
	}
	p.window[p.next] = interval
	p.next = (p.next + 1) % history
	if p.n < history {
		p.n++
	}
	return p.predicted()
}

// Reset forgets all intervals.
func (p *Predictor) Reset() {
	*p = Predictor{}
}

func (p *Predictor) predicted() time.Duration {
	if p.n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < p.n; i++ {
		sum += p.window[i]
	}
	return sum / time.Duration(p.n)
}
