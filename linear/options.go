package linear

// RidgeOption configures a Ridge model.
type RidgeOption func(*Ridge)

// WithRidgeAlpha sets the L2 penalty strength.
func WithRidgeAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) {
		r.Alpha = alpha
	}
}

// LassoOption configures a Lasso model.
type LassoOption func(*Lasso)

// WithLassoAlpha sets the L1 penalty strength.
func WithLassoAlpha(alpha float64) LassoOption {
	return func(l *Lasso) {
		l.Alpha = alpha
	}
}

// WithLassoMaxIter sets the coordinate descent pass limit.
func WithLassoMaxIter(n int) LassoOption {
	return func(l *Lasso) {
		l.MaxIter = n
	}
}

// WithLassoTol sets the convergence tolerance.
func WithLassoTol(tol float64) LassoOption {
	return func(l *Lasso) {
		l.Tol = tol
	}
}
