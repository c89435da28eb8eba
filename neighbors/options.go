package neighbors

// Option configures a KNNRegressor.
type Option func(*KNNRegressor)

// WithNeighbors sets the number of neighbors consulted per prediction.
func WithNeighbors(k int) Option {
	return func(r *KNNRegressor) {
		r.K = k
	}
}

// WithWeights sets the averaging mode, WeightsUniform or WeightsDistance.
func WithWeights(mode string) Option {
	return func(r *KNNRegressor) {
		r.Weights = mode
	}
}
