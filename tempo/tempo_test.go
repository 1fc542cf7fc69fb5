package tempo

import (
	"testing"
	"time"
)

func TestPredictAveragesSteadyClock(t *testing.T) {
	var p Predictor
	var got time.Duration
	for _, iv := range []time.Duration{100, 110, 90, 100} {
		got = p.Predict(iv * time.Millisecond)
	}
	if got != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", got)
	}
}

func TestPredictRestartsOnTempoChange(t *testing.T) {
	var p Predictor
	p.Predict(100 * time.Millisecond)
	p.Predict(100 * time.Millisecond)
	if got := p.Predict(250 * time.Millisecond); got != 250*time.Millisecond {
		t.Errorf("expected window restart at 250ms, got %v", got)
	}
}

func TestPredictIgnoresZero(t *testing.T) {
	var p Predictor
	if got := p.Predict(0); got != 0 {
		t.Errorf("expected no prediction, got %v", got)
	}
	p.Predict(50 * time.Millisecond)
	if got := p.Predict(0); got != 50*time.Millisecond {
		t.Errorf("zero interval must not disturb prediction, got %v", got)
	}
}
