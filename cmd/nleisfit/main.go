// Command nleisfit fits equivalent-circuit models to EIS and second-harmonic
// NLEIS spectra, simulates circuits over frequency grids, and renders
// Nyquist/Bode plots.
//
// Usage:
//
//	nleisfit fit job.yaml
//	nleisfit simulate -circuit "RCOn0" -params 10,1e-2,0.1 -out z.csv
//	nleisfit plot -out nyquist.png z1.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger = zap.NewNop()

func newLogger(debug bool) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		if debug {
			return lvl >= zapcore.DebugLevel
		}
		return lvl >= zapcore.InfoLevel
	})

	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level))
}

func initLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	log = newLogger(cmd.Bool("debug"))
	log.Debug("program started", zap.Strings("args", os.Args))
	return ctx, nil
}

func closeLogging(context.Context, *cli.Command) error {
	_ = log.Sync()
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "nleisfit",
		Usage:           "equivalent-circuit fitting for EIS and 2nd-harmonic NLEIS spectra",
		HideHelpCommand: true,
		Before:          initLogging,
		After:           closeLogging,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose diagnostic output"},
		},
		Commands: []*cli.Command{
			fitCommand(),
			simulateCommand(),
			plotCommand(),
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "nleisfit: %v\n", err)
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
