// Package yieldbench benchmarks regression model families for crop
// yield prediction across a grid of preprocessing variants.
//
// The harness loads a tabular yield dataset, imputes missing values
// once, then sweeps every combination of feature scaling (none,
// standard, min-max) and categorical encoding (none, label, one-hot).
// Each cell of the grid assembles a numeric design matrix, filters
// features by variance and target correlation, splits off a holdout
// partition and evaluates six regression families with both holdout
// metrics and k-fold cross-validation. Cells fail independently: a
// variant that cannot produce a numeric matrix is logged and skipped
// while the rest of the sweep continues.
//
// # Quick Start
//
// Fit a single model directly:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/cropml/yieldbench/linear"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{450, 610, 760, 910})
//	    y := mat.NewDense(4, 1, []float64{14.2, 17.5, 20.4, 23.5})
//
//	    model := linear.NewLinearRegression()
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := model.Predict(mat.NewDense(1, 1, []float64{800}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("yield: %.2f t/ha\n", pred.At(0, 0))
//	}
//
// Or run the full sweep from the command line:
//
//	yieldbench run --data crop_yield.csv --plot --export
//
// # Packages
//
//   - experiment: sweep orchestration, configuration and reporting
//   - dataset: CSV loading, typing and imputation over gota frames
//   - preprocessing: scalers and categorical encoders
//   - features: variance and correlation based feature selection
//   - linear, tree, neighbors, svm: the model families
//   - evaluation: train/test splitting, holdout metrics, k-fold CV
//   - tuning: grid and randomized hyperparameter search
//   - metrics: regression metrics (MSE, RMSE, MAE, R², MAPE)
//   - plot: predicted-vs-actual scatter rendering
//   - core/model: estimator interfaces and shared fitted-state
//   - core/parallel: worker fan-out used by CV and KNN
//   - pkg/errors, pkg/log: typed errors, warnings and structured logging
//
// # Reproducibility
//
// Every random decision (holdout split, fold shuffling, randomized
// search, tree feature subsampling) is driven by an explicit seed,
// 42 by default, so two runs over the same file produce identical
// tables. Cross-validation canonicalizes row order first, making its
// scores invariant to dataset row permutations.
package yieldbench
