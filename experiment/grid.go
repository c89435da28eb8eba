// Package experiment drives the scaling x encoding sweep: it loads
// and imputes the dataset once, then walks every configured cell
// through encoding, NaN repair, scaling, feature selection, splitting
// and per-family tuning, holdout evaluation and cross-validation.
// Cells run sequentially and fail independently; a broken cell is
// logged and skipped, never fatal.
package experiment

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/dataset"
	"github.com/cropml/yieldbench/evaluation"
	"github.com/cropml/yieldbench/features"
	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/pkg/log"
	"github.com/cropml/yieldbench/tuning"
)

// randomSearchIterations is how many candidates randomized search
// draws from a family's space.
const randomSearchIterations = 10

// Runner executes one sweep. All state lives here: configuration,
// resolved families and the run-scoped logger.
type Runner struct {
	cfg      *Config
	families []Family
	logger   *slog.Logger
	runID    string
}

// NewRunner validates the configuration and prepares a sweep.
func NewRunner(cfg *Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	families, err := ResolveFamilies(cfg.Models)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &Runner{
		cfg:      cfg,
		families: families,
		logger:   log.GetLoggerWithName("experiment").With(log.ExperimentIDKey, runID),
		runID:    runID,
	}, nil
}

// RunID returns the unique identifier of this sweep.
func (r *Runner) RunID() string { return r.runID }

// Run loads the dataset, imputes it once, then executes every
// (scaling, encoding) cell in configuration order. The returned error
// is non-nil only when the run is unusable: the dataset would not
// load, or no cell produced a single record.
func (r *Runner) Run() (*SweepResult, error) {
	start := time.Now()
	r.logger.Info("sweep starting",
		"path", r.cfg.DataPath,
		log.TargetKey, r.cfg.TargetColumn,
		log.SeedKey, r.cfg.Seed,
		log.FoldsKey, r.cfg.Folds,
	)

	table, err := dataset.Load(r.cfg.DataPath, r.cfg.TargetColumn)
	if err != nil {
		return nil, errors.Wrap(err, "load dataset")
	}
	imputed, err := table.Impute()
	if err != nil {
		return nil, errors.Wrap(err, "impute dataset")
	}

	result := &SweepResult{
		RunID:  r.runID,
		Target: r.cfg.TargetColumn,
		Rows:   imputed.NRows(),
	}

	for _, scaling := range r.cfg.Scalings {
		for _, encoding := range r.cfg.Encodings {
			outcome := r.runCell(imputed, scaling, encoding)
			result.Outcomes = append(result.Outcomes, outcome)

			cellLogger := r.logger.With(log.ScalingKey, scaling, log.EncodingKey, encoding)
			if outcome.Failed() {
				cellLogger.Warn("cell failed",
					log.StageKey, outcome.Stage,
					log.ErrAttr(outcome.Err),
				)
				continue
			}
			cellLogger.Info("cell finished",
				log.FeaturesKey, len(outcome.Features),
				"families_evaluated", len(outcome.Holdout),
				"families_skipped", len(outcome.FamilyErrors),
			)
		}
	}

	if result.HealthyCells() == 0 {
		return result, errors.Newf("all %d cells failed, nothing to report", len(result.Outcomes))
	}

	r.logger.Info("sweep finished",
		"cells", len(result.Outcomes),
		"cells_failed", len(result.FailedCells()),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// runCell executes one cell end to end. Errors and panics at any
// stage are captured into the outcome rather than propagated.
func (r *Runner) runCell(t *dataset.Table, scaling, encoding string) *CellOutcome {
	outcome := &CellOutcome{Scaling: scaling, Encoding: encoding}
	cellLogger := r.logger.With(log.ScalingKey, scaling, log.EncodingKey, encoding)

	stage := StageEncode
	err := errors.SafeExecute("experiment.runCell", func() error {
		encoded, err := encodeTable(t, encoding)
		if err != nil {
			return err
		}

		stage = StageAssemble
		X, names, err := encoded.FeatureMatrix()
		if err != nil {
			return err
		}
		yVec, err := encoded.TargetVector()
		if err != nil {
			return err
		}

		stage = StageCheckNaN
		if err := residualFill(X, names); err != nil {
			return err
		}

		stage = StageScale
		scaled, err := scaleMatrix(X, scaling)
		if err != nil {
			return err
		}

		stage = StageVariance
		vt := features.NewVarianceThreshold()
		filtered, err := vt.FitTransform(scaled)
		if err != nil {
			return err
		}
		names, err = vt.SelectedNames(names)
		if err != nil {
			return err
		}

		stage = StageSelect
		cs := features.NewCorrelationSelector(r.cfg.CorrelationThreshold)
		selected, err := cs.FitTransform(filtered, yVec)
		if err != nil {
			return err
		}
		names, err = cs.SelectedNames(names)
		if err != nil {
			return err
		}
		outcome.Features = names
		cellLogger.Debug("features selected",
			log.FeaturesKey, len(names),
			log.SamplesKey, t.NRows(),
		)

		stage = StageSplit
		XTrain, XTest, yTrain, yTest, err := evaluation.TrainTestSplit(
			selected, yVec, r.cfg.TestSize, int64(r.cfg.Seed))
		if err != nil {
			return err
		}
		outcome.TestActual = columnSlice(yTest)

		stage = StageModels
		for _, family := range r.families {
			r.runFamily(outcome, cellLogger, family, XTrain, yTrain, XTest, yTest, selected, yVec)
		}
		return nil
	})
	if err != nil {
		outcome.Err = err
		outcome.Stage = stage
	}
	return outcome
}

// runFamily tunes, evaluates and cross-validates one family inside a
// cell. Failures are recorded on the outcome and skip only this
// family.
func (r *Runner) runFamily(outcome *CellOutcome, cellLogger *slog.Logger, family Family,
	XTrain, yTrain, XTest, yTest, XFull mat.Matrix, yFull *mat.VecDense) {

	familyLogger := cellLogger.With(log.ModelNameKey, family.Name)

	err := errors.SafeExecute("experiment.runFamily", func() error {
		var params tuning.Params
		if r.cfg.Tuning && family.Tuned() {
			best, err := r.tuneFamily(familyLogger, family, XTrain, yTrain)
			if err != nil {
				return errors.Wrap(err, "tune")
			}
			params = best
		}

		m := family.New(params)
		holdout, err := evaluation.Evaluate(m, XTrain, yTrain, XTest, yTest)
		if err != nil {
			return errors.Wrap(err, "evaluate")
		}
		predicted, err := m.Predict(XTest)
		if err != nil {
			return errors.Wrap(err, "predict holdout")
		}

		familyLogger.Info("holdout evaluated",
			log.OperationKey, log.OperationEvaluate,
			log.R2ScoreKey, holdout.R2,
			log.MAEKey, holdout.MAE,
			log.MSEKey, holdout.MSE,
			log.DurationMsKey, holdout.TrainTime.Milliseconds(),
		)

		factory := func() model.Regressor { return family.New(params) }
		cv, err := evaluation.CrossValidate(factory, XFull, yFull,
			evaluation.NewKFold(r.cfg.Folds, true, r.cfg.Seed))
		if err != nil {
			return errors.Wrap(err, "cross-validate")
		}

		familyLogger.Info("cross-validated",
			log.OperationKey, log.OperationCrossValidate,
			log.FoldsKey, cv.Folds,
			log.R2ScoreKey, cv.R2Mean,
			log.MAEKey, cv.MAEMean,
			log.MSEKey, cv.MSEMean,
		)

		outcome.Holdout = append(outcome.Holdout, HoldoutResult{
			Family:    family.Name,
			Params:    params,
			Metrics:   *holdout,
			Predicted: columnSlice(predicted),
		})
		outcome.CV = append(outcome.CV, CVResult{
			Family:  family.Name,
			Params:  params,
			Metrics: *cv,
		})
		return nil
	})
	if err != nil {
		if outcome.FamilyErrors == nil {
			outcome.FamilyErrors = make(map[string]error)
		}
		outcome.FamilyErrors[family.Name] = err
		familyLogger.Warn("model family skipped", log.ErrAttr(err))
	}
}

// tuneFamily runs the family's searches on the training partition and
// returns the best assignment found. Grid search runs first;
// randomized search replaces its winner only with a strictly better
// score.
func (r *Runner) tuneFamily(familyLogger *slog.Logger, family Family, XTrain, yTrain mat.Matrix) (tuning.Params, error) {
	builder := func(p tuning.Params) model.Regressor { return family.New(p) }

	var (
		best     *tuning.SearchResult
		strategy string
	)

	if len(family.Grid) > 0 {
		res, err := tuning.NewGridSearchCV(family.Grid, r.cfg.Folds, r.cfg.Seed).
			Search(builder, XTrain, yTrain)
		if err != nil {
			return nil, errors.Wrap(err, "grid search")
		}
		familyLogger.Debug("search finished",
			log.OperationKey, log.OperationTune,
			log.StrategyKey, "grid",
			log.CandidatesKey, res.Candidates,
			log.BestScoreKey, res.BestScore,
		)
		best = res
		strategy = "grid"
	}

	if len(family.Space) > 0 {
		res, err := tuning.NewRandomizedSearchCV(family.Space, randomSearchIterations, r.cfg.Folds, r.cfg.Seed).
			Search(builder, XTrain, yTrain)
		if err != nil {
			return nil, errors.Wrap(err, "randomized search")
		}
		familyLogger.Debug("search finished",
			log.OperationKey, log.OperationTune,
			log.StrategyKey, "randomized",
			log.CandidatesKey, res.Candidates,
			log.BestScoreKey, res.BestScore,
		)
		if best == nil || res.BestScore > best.BestScore {
			best = res
			strategy = "randomized"
		}
	}

	familyLogger.Info("hyperparameters chosen",
		log.OperationKey, log.OperationTune,
		log.StrategyKey, strategy,
		log.BestScoreKey, best.BestScore,
	)
	return best.BestParams, nil
}
