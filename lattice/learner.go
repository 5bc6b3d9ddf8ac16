package lattice

import "errors"

// ErrNoUpdates is returned by Average before the first Update.
var ErrNoUpdates = errors.New("average requested before any update")

// Learner is an averaged perceptron.
//
// Each gradient is also accumulated weighted by the number of updates that
// preceded it, so the running mean of the weights is recovered in one pass as
// live - acc/step.
type Learner struct {
	weights *Weight
	acc     *Weight
	step    int
}

// NewLearner creates a learner starting from empty weights.
func NewLearner() *Learner {
	return &Learner{
		weights: NewWeight(),
		acc:     NewWeight(),
	}
}

// Weights returns the live (unaveraged) weights.
func (l *Learner) Weights() *Weight {
	return l.weights
}

// Step returns the number of updates applied so far.
func (l *Learner) Step() int {
	return l.step
}

// Update applies one gradient. It must be called once per training example,
// including examples whose gradient is empty.
func (l *Learner) Update(gradient *Weight) error {
	if err := l.weights.Update(gradient, 1); err != nil {
		return err
	}
	if l.step > 0 {
		if err := l.acc.Update(gradient, float64(l.step)); err != nil {
			return err
		}
	}
	l.step++
	return nil
}

// Average returns the mean of the live weights observed after each update.
func (l *Learner) Average() (*Weight, error) {
	if l.step == 0 {
		return nil, ErrNoUpdates
	}
	ave := l.weights.Clone()
	if err := ave.Update(l.acc, -1/float64(l.step)); err != nil {
		return nil, err
	}
	return ave, nil
}
