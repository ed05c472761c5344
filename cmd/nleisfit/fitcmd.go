package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yuefan98/NLEIS-Toolbox/dataio"
	"github.com/yuefan98/NLEIS-Toolbox/ecm/circuit"
	"github.com/yuefan98/NLEIS-Toolbox/eisplot"
	"github.com/yuefan98/NLEIS-Toolbox/fit"
	"github.com/yuefan98/NLEIS-Toolbox/fitstats"
)

func fitCommand() *cli.Command {
	return &cli.Command{
		Name:      "fit",
		Usage:     "Fit a circuit model to measured spectra described by a YAML job file",
		ArgsUsage: "JOB.yaml",
		Action:    runFit,
	}
}

func runFit(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("fit expects exactly one job file, got %d arguments", cmd.Args().Len())
	}

	job, err := loadJob(cmd.Args().First())
	if err != nil {
		return err
	}

	f, z1, err := dataio.ReadCSV(job.EISData)
	if err != nil {
		return err
	}
	log.Debug("loaded EIS spectrum", zap.String("path", job.EISData), zap.Int("points", len(f)))

	if !job.simultaneous() {
		return runSingleFit(job, f, z1)
	}

	f2, z2, err := dataio.ReadCSV(job.NLEISData)
	if err != nil {
		return err
	}
	log.Debug("loaded NLEIS spectrum", zap.String("path", job.NLEISData), zap.Int("points", len(f2)))

	if err := sameGrid(f, f2); err != nil {
		return err
	}
	return runSimulFit(job, f, z1, z2)
}

func runSingleFit(job *fitJob, f []float64, z []complex128) error {
	c, err := circuit.Parse(job.Circuit1, job.Constants1)
	if err != nil {
		return err
	}

	res, err := fit.CircuitFit(f, z, job.Circuit1, job.Initial, job.Constants1, job.config())
	if err != nil {
		return err
	}
	log.Info("fit converged",
		zap.String("circuit", job.Circuit1),
		zap.Float64("cost", res.Cost),
		zap.Int("evaluations", res.Evaluations))

	printParams(c.ParamLabels(), paramUnitMap(c), res)
	printStats(res)

	if job.PlotDir == "" {
		return nil
	}

	model, err := c.Impedance(f, res.Params)
	if err != nil {
		return err
	}
	return saveNyquist(job.PlotDir, "eis", "EIS: "+job.Circuit1, "Ohm", f, z, model)
}

func runSimulFit(job *fitJob, f []float64, z1, z2 []complex128) error {
	res, err := fit.SimulFit(f, z1, z2, job.Circuit1, job.Circuit2, job.Edited,
		job.Initial, job.Constants1, job.Constants2, job.config())
	if err != nil {
		return err
	}
	log.Info("simultaneous fit converged",
		zap.String("circuit_1", job.Circuit1),
		zap.String("circuit_2", job.Circuit2),
		zap.Float64("cost", res.Cost),
		zap.Int("evaluations", res.Evaluations))

	labels, err := fit.SharedLabels(job.Edited, job.Constants1, job.Constants2)
	if err != nil {
		return err
	}

	edited, err := circuit.Parse(job.Edited, nil)
	if err != nil {
		return err
	}
	printParams(labels, paramUnitMap(edited), res)
	printStats(res)

	if job.PlotDir == "" {
		return nil
	}
	return saveSimulPlots(job, f, z1, z2, res)
}

func saveSimulPlots(job *fitJob, f []float64, z1, z2 []complex128, res *fit.Result) error {
	p1, p2, err := fit.SplitParameters(job.Edited, res.Params, job.Constants1, job.Constants2)
	if err != nil {
		return err
	}

	c1, err := circuit.Parse(job.Circuit1, job.Constants1)
	if err != nil {
		return err
	}
	c2, err := circuit.Parse(job.Circuit2, job.Constants2)
	if err != nil {
		return err
	}

	model1, err := c1.Impedance(f, p1)
	if err != nil {
		return err
	}
	model2, err := c2.Impedance(f, p2)
	if err != nil {
		return err
	}

	return multierr.Combine(
		saveNyquist(job.PlotDir, "eis", "EIS: "+job.Circuit1, "Ohm", f, z1, model1),
		saveNyquist(job.PlotDir, "nleis", "2nd-NLEIS: "+job.Circuit2, "Ohm/A", f, z2, model2),
	)
}

func saveNyquist(dir, name, title, unit string, f []float64, data, model []complex128) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create plot directory: %w", err)
	}

	p, err := eisplot.Nyquist(title, unit,
		eisplot.Series{Name: "data", F: f, Z: data},
		eisplot.Series{Name: "fit", F: f, Z: model, Line: true})
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name+".png")
	if err := eisplot.Save(p, path, 5, 5); err != nil {
		return err
	}
	log.Info("wrote plot", zap.String("path", path))
	return nil
}

func printParams(labels []string, units map[string]string, res *fit.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "parameter\tvalue\tstd err\tunit")
	for i, label := range labels {
		errStr := "-"
		if res.StdErrs != nil && !math.IsNaN(res.StdErrs[i]) {
			errStr = fmt.Sprintf("%.4g", res.StdErrs[i])
		}
		fmt.Fprintf(w, "%s\t%.6g\t%s\t%s\n", label, res.Params[i], errStr, units[label])
	}
	w.Flush()
}

func printStats(res *fit.Result) {
	if len(res.Residuals) == 0 {
		return
	}
	st := fitstats.Calculate(res.Residuals, len(res.Params), 1)
	log.Info("goodness of fit",
		zap.Float64("chi_square", st.ChiSquare),
		zap.Float64("reduced_chi_square", st.ReducedChiSq),
		zap.Float64("rmse", st.RMSE),
		zap.Float64("aic", st.AIC))
}

func paramUnitMap(c *circuit.Circuit) map[string]string {
	labels := c.ParamLabels()
	units := c.ParamUnits()
	m := make(map[string]string, len(labels))
	for i, label := range labels {
		m[label] = units[i]
	}
	return m
}

func sameGrid(f1, f2 []float64) error {
	if len(f1) != len(f2) {
		return fmt.Errorf("frequency grids differ: %d EIS points vs %d NLEIS points", len(f1), len(f2))
	}
	for i := range f1 {
		if diff := math.Abs(f1[i] - f2[i]); diff > 1e-9*math.Max(1, math.Abs(f1[i])) {
			return fmt.Errorf("frequency grids differ at row %d: %g vs %g", i+1, f1[i], f2[i])
		}
	}
	return nil
}
