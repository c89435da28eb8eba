package experiment

import (
	"sort"
	"time"

	"github.com/cropml/yieldbench/evaluation"
	"github.com/cropml/yieldbench/tuning"
)

// HoldoutResult is one model family's holdout evaluation within a
// cell. Predicted keeps the holdout predictions so the best model can
// be plotted later without refitting.
type HoldoutResult struct {
	Family    string
	Params    tuning.Params
	Metrics   evaluation.HoldoutMetrics
	Predicted []float64
}

// CVResult is one model family's cross-validation summary within a
// cell.
type CVResult struct {
	Family  string
	Params  tuning.Params
	Metrics evaluation.CVMetrics
}

// CellOutcome is everything one (scaling, encoding) cell produced. A
// cell either failed at a pipeline stage (Err and Stage set, no
// records) or carries one holdout and one CV record per surviving
// model family. Families that failed inside a healthy cell appear in
// FamilyErrors only.
type CellOutcome struct {
	Scaling  string
	Encoding string

	Features   []string
	TestActual []float64

	Holdout []HoldoutResult
	CV      []CVResult

	FamilyErrors map[string]error

	Err   error
	Stage string
}

// Failed reports whether the whole cell was abandoned.
func (c *CellOutcome) Failed() bool { return c.Err != nil }

// SweepResult accumulates every cell of a run.
type SweepResult struct {
	RunID    string
	Target   string
	Rows     int
	Outcomes []*CellOutcome
}

// HoldoutRecord is a flattened holdout row for reporting.
type HoldoutRecord struct {
	Scaling   string
	Encoding  string
	Family    string
	Params    tuning.Params
	R2        float64
	MAE       float64
	MSE       float64
	TrainTime time.Duration
}

// CVRecord is a flattened cross-validation row for reporting.
type CVRecord struct {
	Scaling  string
	Encoding string
	Family   string
	Params   tuning.Params
	R2Mean   float64
	R2Std    float64
	MAEMean  float64
	MSEMean  float64
}

// HoldoutRecords flattens all healthy cells into records sorted by R²
// descending. Equal scores keep cell enumeration order.
func (s *SweepResult) HoldoutRecords() []HoldoutRecord {
	var records []HoldoutRecord
	for _, cell := range s.Outcomes {
		if cell.Failed() {
			continue
		}
		for _, h := range cell.Holdout {
			records = append(records, HoldoutRecord{
				Scaling:   cell.Scaling,
				Encoding:  cell.Encoding,
				Family:    h.Family,
				Params:    h.Params,
				R2:        h.Metrics.R2,
				MAE:       h.Metrics.MAE,
				MSE:       h.Metrics.MSE,
				TrainTime: h.Metrics.TrainTime,
			})
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].R2 > records[j].R2
	})
	return records
}

// CVRecords flattens all healthy cells into records sorted by mean R²
// descending. Equal scores keep cell enumeration order.
func (s *SweepResult) CVRecords() []CVRecord {
	var records []CVRecord
	for _, cell := range s.Outcomes {
		if cell.Failed() {
			continue
		}
		for _, cv := range cell.CV {
			records = append(records, CVRecord{
				Scaling:  cell.Scaling,
				Encoding: cell.Encoding,
				Family:   cv.Family,
				Params:   cv.Params,
				R2Mean:   cv.Metrics.R2Mean,
				R2Std:    cv.Metrics.R2Std,
				MAEMean:  cv.Metrics.MAEMean,
				MSEMean:  cv.Metrics.MSEMean,
			})
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].R2Mean > records[j].R2Mean
	})
	return records
}

// BestPerFamily returns each family's best holdout record, best family
// first.
func (s *SweepResult) BestPerFamily() []HoldoutRecord {
	best := make(map[string]HoldoutRecord)
	for _, rec := range s.HoldoutRecords() {
		if _, seen := best[rec.Family]; !seen {
			best[rec.Family] = rec
		}
	}

	records := make([]HoldoutRecord, 0, len(best))
	for _, rec := range best {
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].R2 != records[j].R2 {
			return records[i].R2 > records[j].R2
		}
		return records[i].Family < records[j].Family
	})
	return records
}

// BestPrediction returns the best holdout record together with its
// cell's predictions and actual targets. The second return is false
// when no cell produced a record.
func (s *SweepResult) BestPrediction() (HoldoutRecord, []float64, []float64, bool) {
	var (
		bestRecord HoldoutRecord
		predicted  []float64
		actual     []float64
		found      bool
	)
	for _, cell := range s.Outcomes {
		if cell.Failed() {
			continue
		}
		for _, h := range cell.Holdout {
			if !found || h.Metrics.R2 > bestRecord.R2 {
				bestRecord = HoldoutRecord{
					Scaling:   cell.Scaling,
					Encoding:  cell.Encoding,
					Family:    h.Family,
					Params:    h.Params,
					R2:        h.Metrics.R2,
					MAE:       h.Metrics.MAE,
					MSE:       h.Metrics.MSE,
					TrainTime: h.Metrics.TrainTime,
				}
				predicted = h.Predicted
				actual = cell.TestActual
				found = true
			}
		}
	}
	return bestRecord, predicted, actual, found
}

// HealthyCells counts cells that produced at least one record.
func (s *SweepResult) HealthyCells() int {
	n := 0
	for _, cell := range s.Outcomes {
		if !cell.Failed() && len(cell.Holdout) > 0 {
			n++
		}
	}
	return n
}

// FailedCells returns the cells abandoned at a pipeline stage.
func (s *SweepResult) FailedCells() []*CellOutcome {
	var failed []*CellOutcome
	for _, cell := range s.Outcomes {
		if cell.Failed() {
			failed = append(failed, cell)
		}
	}
	return failed
}
