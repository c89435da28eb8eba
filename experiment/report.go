package experiment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"

	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/tuning"
)

// Reporter renders a sweep as aligned text tables.
type Reporter struct {
	w io.Writer
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Write renders the run header, the per-family leaderboard, the full
// holdout and cross-validation tables, and any failures.
func (r *Reporter) Write(result *SweepResult) error {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s (target %s, %d rows)\n\n", result.RunID, result.Target, result.Rows)

	if best := result.BestPerFamily(); len(best) > 0 {
		fmt.Fprintln(tw, "Best per family")
		fmt.Fprintln(tw, "FAMILY\tSCALING\tENCODING\tR2\tMAE\tMSE\tPARAMS")
		for _, rec := range best {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%s\n",
				rec.Family, rec.Scaling, rec.Encoding,
				rec.R2, rec.MAE, rec.MSE, formatParams(rec.Params))
		}
		fmt.Fprintln(tw)
	}

	if records := result.HoldoutRecords(); len(records) > 0 {
		fmt.Fprintln(tw, "Holdout")
		fmt.Fprintln(tw, "SCALING\tENCODING\tFAMILY\tR2\tMAE\tMSE\tTRAIN\tPARAMS")
		for _, rec := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%s\t%s\n",
				rec.Scaling, rec.Encoding, rec.Family,
				rec.R2, rec.MAE, rec.MSE, rec.TrainTime, formatParams(rec.Params))
		}
		fmt.Fprintln(tw)
	}

	if records := result.CVRecords(); len(records) > 0 {
		fmt.Fprintln(tw, "Cross-validation")
		fmt.Fprintln(tw, "SCALING\tENCODING\tFAMILY\tR2 MEAN\tR2 STD\tMAE MEAN\tMSE MEAN\tPARAMS")
		for _, rec := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
				rec.Scaling, rec.Encoding, rec.Family,
				rec.R2Mean, rec.R2Std, rec.MAEMean, rec.MSEMean, formatParams(rec.Params))
		}
		fmt.Fprintln(tw)
	}

	if failed := result.FailedCells(); len(failed) > 0 {
		fmt.Fprintln(tw, "Failed cells")
		fmt.Fprintln(tw, "SCALING\tENCODING\tSTAGE\tERROR")
		for _, cell := range failed {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", cell.Scaling, cell.Encoding, cell.Stage, cell.Err)
		}
		fmt.Fprintln(tw)
	}

	r.writeSkipped(tw, result)
	return tw.Flush()
}

// writeSkipped lists families that failed inside otherwise healthy
// cells, in deterministic name order.
func (r *Reporter) writeSkipped(tw *tabwriter.Writer, result *SweepResult) {
	header := false
	for _, cell := range result.Outcomes {
		if cell.Failed() || len(cell.FamilyErrors) == 0 {
			continue
		}
		names := make([]string, 0, len(cell.FamilyErrors))
		for name := range cell.FamilyErrors {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if !header {
				fmt.Fprintln(tw, "Skipped families")
				fmt.Fprintln(tw, "SCALING\tENCODING\tFAMILY\tERROR")
				header = true
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", cell.Scaling, cell.Encoding, name, cell.FamilyErrors[name])
		}
	}
	if header {
		fmt.Fprintln(tw)
	}
}

// formatParams renders an assignment as sorted "k=v" pairs, or "-"
// for an untuned default.
func formatParams(p tuning.Params) string {
	if len(p) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}
	return strings.Join(parts, ",")
}

// ExportCSV writes holdout.csv and crossval.csv under dir, creating
// the directory if needed.
func ExportCSV(result *SweepResult, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create export directory")
	}

	holdout := [][]string{{"scaling", "encoding", "family", "r2", "mae", "mse", "train_ms", "params"}}
	for _, rec := range result.HoldoutRecords() {
		holdout = append(holdout, []string{
			rec.Scaling, rec.Encoding, rec.Family,
			formatFloat(rec.R2), formatFloat(rec.MAE), formatFloat(rec.MSE),
			strconv.FormatInt(rec.TrainTime.Milliseconds(), 10),
			formatParams(rec.Params),
		})
	}
	if err := writeRecords(holdout, filepath.Join(dir, "holdout.csv")); err != nil {
		return err
	}

	crossval := [][]string{{"scaling", "encoding", "family", "r2_mean", "r2_std", "mae_mean", "mse_mean", "params"}}
	for _, rec := range result.CVRecords() {
		crossval = append(crossval, []string{
			rec.Scaling, rec.Encoding, rec.Family,
			formatFloat(rec.R2Mean), formatFloat(rec.R2Std),
			formatFloat(rec.MAEMean), formatFloat(rec.MSEMean),
			formatParams(rec.Params),
		})
	}
	return writeRecords(crossval, filepath.Join(dir, "crossval.csv"))
}

// writeRecords persists rows as CSV. Type detection stays off so
// every value is written exactly as formatted.
func writeRecords(rows [][]string, path string) error {
	df := dataframe.LoadRecords(rows, dataframe.DetectTypes(false))
	if df.Err != nil {
		return errors.Wrapf(df.Err, "build frame for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	if err := df.WriteCSV(f); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
