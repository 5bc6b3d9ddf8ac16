package lattice

import (
	"errors"
	"math"
	"testing"
)

func gradientOf(key string, values ...float64) *Weight {
	g := NewWeight()
	_ = g.AddFrom(key, values, 1)
	return g
}

func TestLearnerAverage(t *testing.T) {
	l := NewLearner()
	if err := l.Update(gradientOf("k", 1)); err != nil {
		t.Fatal(err)
	}
	if err := l.Update(gradientOf("k", 1)); err != nil {
		t.Fatal(err)
	}

	if got := l.Weights().Get("k")[0]; got != 2 {
		t.Errorf("live = %v, want 2", got)
	}
	ave, err := l.Average()
	if err != nil {
		t.Fatal(err)
	}
	if got := ave.Get("k")[0]; math.Abs(got-1.5) > 1e-12 {
		t.Errorf("average = %v, want 1.5", got)
	}
	if l.Weights().Get("k")[0] != 2 {
		t.Error("Average should not modify the live weights")
	}
}

func TestLearnerAverageIsMeanOfSnapshots(t *testing.T) {
	grads := [][]float64{{1, 0}, {0, 0}, {-2, 3}, {0.5, 0}, {0, -1}}
	l := NewLearner()
	live := []float64{0, 0}
	sum := []float64{0, 0}
	for _, g := range grads {
		if err := l.Update(gradientOf("k", g...)); err != nil {
			t.Fatal(err)
		}
		for i := range live {
			live[i] += g[i]
			sum[i] += live[i]
		}
	}
	ave, err := l.Average()
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range ave.Get("k") {
		want := sum[i] / float64(len(grads))
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("average[%d] = %v, want %v", i, v, want)
		}
	}
	if l.Step() != len(grads) {
		t.Errorf("Step = %d, want %d", l.Step(), len(grads))
	}
}

func TestLearnerEmptyGradientCountsAsStep(t *testing.T) {
	l := NewLearner()
	_ = l.Update(gradientOf("k", 2))
	_ = l.Update(NewWeight())
	ave, err := l.Average()
	if err != nil {
		t.Fatal(err)
	}
	if got := ave.Get("k")[0]; got != 2 {
		t.Errorf("average = %v, want 2", got)
	}
}

func TestLearnerAverageBeforeUpdate(t *testing.T) {
	_, err := NewLearner().Average()
	if !errors.Is(err, ErrNoUpdates) {
		t.Errorf("err = %v, want ErrNoUpdates", err)
	}
}

func TestLearnerUpdateMismatch(t *testing.T) {
	l := NewLearner()
	_ = l.Update(gradientOf("k", 1))
	err := l.Update(gradientOf("k", 1, 2))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
}
