package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yuefan98/NLEIS-Toolbox/dataio"
	"github.com/yuefan98/NLEIS-Toolbox/ecm/circuit"
	"github.com/yuefan98/NLEIS-Toolbox/eisplot"
)

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:   "simulate",
		Usage:  "Evaluate a circuit over a log-spaced frequency grid and write CSV",
		Action: runSimulate,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "circuit", Aliases: []string{"c"}, Usage: "circuit `DESCRIPTION`, e.g. \"L0-R0-TDSn0\"", Required: true},
			&cli.StringFlag{Name: "params", Aliases: []string{"p"}, Usage: "comma-separated parameter `VALUES` in circuit order", Required: true},
			&cli.Float64Flag{Name: "fmin", Value: 1e-2, Usage: "lowest frequency in Hz"},
			&cli.Float64Flag{Name: "fmax", Value: 1e3, Usage: "highest frequency in Hz"},
			&cli.IntFlag{Name: "points", Aliases: []string{"n"}, Value: 60, Usage: "number of grid points"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output CSV `FILE`", Required: true},
			&cli.StringFlag{Name: "plot", Usage: "also write a Nyquist plot to `FILE` (PNG)"},
		},
	}
}

func runSimulate(_ context.Context, cmd *cli.Command) error {
	desc := cmd.String("circuit")
	params, err := parseFloats(cmd.String("params"))
	if err != nil {
		return fmt.Errorf("unable to parse -params: %w", err)
	}

	c, err := circuit.Parse(desc, nil)
	if err != nil {
		return err
	}

	f, err := logGrid(cmd.Float64("fmin"), cmd.Float64("fmax"), cmd.Int("points"))
	if err != nil {
		return err
	}

	z, err := c.Impedance(f, params)
	if err != nil {
		return err
	}

	out := cmd.String("out")
	if err := dataio.WriteCSV(out, f, z); err != nil {
		return err
	}
	log.Info("wrote spectrum", zap.String("circuit", desc), zap.String("path", out), zap.Int("points", len(f)))

	if plotPath := cmd.String("plot"); plotPath != "" {
		p, err := eisplot.Nyquist(desc, "Ohm", eisplot.Series{Name: desc, F: f, Z: z, Line: true})
		if err != nil {
			return err
		}
		if err := eisplot.Save(p, plotPath, 5, 5); err != nil {
			return err
		}
		log.Info("wrote plot", zap.String("path", plotPath))
	}
	return nil
}

func plotCommand() *cli.Command {
	return &cli.Command{
		Name:      "plot",
		Usage:     "Render Nyquist (and optionally Bode) plots from spectrum CSV files",
		ArgsUsage: "SPECTRUM.csv [SPECTRUM.csv ...]",
		Action:    runPlot,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "nyquist.png", Usage: "Nyquist output `FILE`"},
			&cli.BoolFlag{Name: "bode", Usage: "also write Bode magnitude and phase plots"},
			&cli.StringFlag{Name: "title", Value: "", Usage: "plot title"},
			&cli.StringFlag{Name: "unit", Value: "Ohm", Usage: "impedance unit label (Ohm for EIS, Ohm/A for 2nd-NLEIS)"},
		},
	}
}

func runPlot(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("plot expects at least one spectrum CSV")
	}

	var series []eisplot.Series
	for _, path := range cmd.Args().Slice() {
		f, z, err := dataio.ReadCSV(path)
		if err != nil {
			return err
		}
		series = append(series, eisplot.Series{Name: trimExt(path), F: f, Z: z})
	}

	title := cmd.String("title")
	unit := cmd.String("unit")

	p, err := eisplot.Nyquist(title, unit, series...)
	if err != nil {
		return err
	}
	out := cmd.String("out")
	if err := eisplot.Save(p, out, 5, 5); err != nil {
		return err
	}
	log.Info("wrote plot", zap.String("path", out))

	if !cmd.Bool("bode") {
		return nil
	}

	mag, phase, err := eisplot.Bode(title, unit, series...)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(out, ".png")
	err = multierr.Combine(
		eisplot.Save(mag, base+"-mag.png", 5, 4),
		eisplot.Save(phase, base+"-phase.png", 5, 4),
	)
	if err == nil {
		log.Info("wrote Bode plots", zap.String("magnitude", base+"-mag.png"), zap.String("phase", base+"-phase.png"))
	}
	return err
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// logGrid returns n frequencies log-spaced from high to low, matching the
// sweep direction of a typical impedance measurement.
func logGrid(fmin, fmax float64, n int) ([]float64, error) {
	if fmin <= 0 || fmax <= fmin {
		return nil, fmt.Errorf("invalid frequency range [%g, %g]", fmin, fmax)
	}
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 grid points, got %d", n)
	}

	lo := math.Log10(fmin)
	hi := math.Log10(fmax)
	step := (hi - lo) / float64(n-1)

	f := make([]float64, n)
	for i := range f {
		f[i] = math.Pow(10, hi-float64(i)*step)
	}
	return f, nil
}

func trimExt(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
