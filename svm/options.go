package svm

// Option configures a LinearSVR.
type Option func(*LinearSVR)

// WithC sets the inverse regularization strength.
func WithC(c float64) Option {
	return func(s *LinearSVR) {
		s.C = c
	}
}

// WithEpsilon sets the half-width of the penalty-free tube.
func WithEpsilon(eps float64) Option {
	return func(s *LinearSVR) {
		s.Epsilon = eps
	}
}

// WithMaxIter caps the number of training epochs.
func WithMaxIter(n int) Option {
	return func(s *LinearSVR) {
		s.MaxIter = n
	}
}

// WithTol sets the epoch-loss plateau threshold.
func WithTol(tol float64) Option {
	return func(s *LinearSVR) {
		s.Tol = tol
	}
}

// WithLearningRate sets the initial SGD step size.
func WithLearningRate(eta float64) Option {
	return func(s *LinearSVR) {
		s.LearningRate = eta
	}
}

// WithRandomState seeds the per-epoch sample shuffle.
func WithRandomState(seed int64) Option {
	return func(s *LinearSVR) {
		s.RandomState = seed
	}
}
