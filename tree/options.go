package tree

// Option configures a Regressor.
type Option func(*Regressor)

// WithMaxDepth limits the tree depth; 0 means unbounded.
func WithMaxDepth(d int) Option {
	return func(t *Regressor) {
		t.MaxDepth = d
	}
}

// WithMinSamplesSplit sets the minimum node size for attempting a split.
func WithMinSamplesSplit(n int) Option {
	return func(t *Regressor) {
		t.MinSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum child size for a valid split.
func WithMinSamplesLeaf(n int) Option {
	return func(t *Regressor) {
		t.MinSamplesLeaf = n
	}
}

// WithMaxFeatures sets the per-split feature budget: "" or "all",
// "sqrt", or "log2".
func WithMaxFeatures(mode string) Option {
	return func(t *Regressor) {
		t.MaxFeatures = mode
	}
}

// WithRandomState seeds the feature subsampling.
func WithRandomState(seed int64) Option {
	return func(t *Regressor) {
		t.RandomState = seed
	}
}
