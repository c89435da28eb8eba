// Package log defines standard attribute keys for experiment logging.
//
// Keys follow a hierarchical naming convention ("cell.scaling",
// "metrics.r2_score") so that JSON log lines from a sweep can be filtered
// and joined by field. Using these constants keeps key spelling consistent
// across packages.

package log

// Experiment and cell context.
// These attributes locate a record inside the preprocessing sweep.
const (
	// ExperimentIDKey carries the unique identifier of one harness run.
	ExperimentIDKey = "experiment.id"

	// ScalingKey names the scaling variant of the active grid cell.
	// Values: "none", "standard", "minmax".
	ScalingKey = "cell.scaling"

	// EncodingKey names the encoding variant of the active grid cell.
	// Values: "none", "label", "onehot".
	EncodingKey = "cell.encoding"

	// StageKey names the pipeline stage a record refers to.
	// Examples: "preprocess", "select", "tune", "train", "evaluate".
	StageKey = "cell.stage"
)

// Model and operation context.
const (
	// ModelNameKey identifies the model family being handled.
	// Examples: "DecisionTree", "LinearRegression", "Lasso".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one model instance across log lines.
	EstimatorIDKey = "estimator.id"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "predict", "transform", "score".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "linear", "preprocessing", "experiment.runner".
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns being processed.
	FeaturesKey = "data.features"

	// TargetKey names the target column.
	TargetKey = "data.target"
)

// Timing and scores.
const (
	// DurationMsKey is the wall-clock time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey is the coefficient of determination of a fit.
	R2ScoreKey = "metrics.r2_score"

	// MAEKey is the mean absolute error of a fit.
	MAEKey = "metrics.mae"

	// MSEKey is the mean squared error of a fit.
	MSEKey = "metrics.mse"
)

// Tuning and cross-validation context.
const (
	// StrategyKey names the hyperparameter search strategy.
	// Values: "grid", "randomized".
	StrategyKey = "tuning.strategy"

	// CandidatesKey is the number of parameter settings evaluated.
	CandidatesKey = "tuning.candidates"

	// BestScoreKey is the best mean CV score found by a search.
	BestScoreKey = "tuning.best_score"

	// FoldsKey is the number of cross-validation folds.
	FoldsKey = "cv.folds"

	// SeedKey is the random seed in effect.
	SeedKey = "config.random_seed"
)

// Standard attribute values for OperationKey.
const (
	OperationFit           = "fit"
	OperationPredict       = "predict"
	OperationTransform     = "transform"
	OperationScore         = "score"
	OperationTune          = "tune"
	OperationEvaluate      = "evaluate"
	OperationCrossValidate = "cross_validate"
)

// Error codes attached under "error.code".
const (
	ErrorCodeKey = "error.code"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorNoFeatures        = "NO_FEATURES"
)
