// Package evaluation provides holdout and cross-validated assessment
// of regression models: seeded train/test splitting, k-fold
// cross-validation and wall-clock timed scoring.
package evaluation

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
)

// HoldoutMetrics reports a model's performance on a held-out test set
// along with the time spent fitting.
type HoldoutMetrics struct {
	MAE       float64
	MSE       float64
	R2        float64
	TrainTime time.Duration
}

// Evaluate fits the model on the training partition, times the fit,
// and scores predictions on the holdout partition.
func Evaluate(m model.Regressor, XTrain, yTrain, XTest, yTest mat.Matrix) (*HoldoutMetrics, error) {
	testRows, _ := XTest.Dims()
	yTestRows, yTestCols := yTest.Dims()
	if yTestRows != testRows {
		return nil, errors.NewDimensionError("Evaluate", testRows, yTestRows, 0)
	}
	if yTestCols != 1 {
		return nil, errors.NewValueError("Evaluate", "yTest must be a column vector (n×1 matrix)")
	}

	start := time.Now()
	if err := m.Fit(XTrain, yTrain); err != nil {
		return nil, errors.Wrap(err, "Evaluate: fit")
	}
	trainTime := time.Since(start)

	pred, err := m.Predict(XTest)
	if err != nil {
		return nil, errors.Wrap(err, "Evaluate: predict")
	}

	yVec := columnToVec(yTest)
	pVec := columnToVec(pred)

	mae, err := metrics.MAE(yVec, pVec)
	if err != nil {
		return nil, errors.Wrap(err, "Evaluate: mae")
	}
	mse, err := metrics.MSE(yVec, pVec)
	if err != nil {
		return nil, errors.Wrap(err, "Evaluate: mse")
	}
	r2, err := metrics.R2Score(yVec, pVec)
	if err != nil {
		return nil, errors.Wrap(err, "Evaluate: r2")
	}

	return &HoldoutMetrics{
		MAE:       mae,
		MSE:       mse,
		R2:        r2,
		TrainTime: trainTime,
	}, nil
}
