// Package eisplot renders Nyquist and Bode views of impedance spectra.
//
// Each plot overlays any number of Series, typically one measured spectrum
// drawn as points and one fitted spectrum drawn as a line. Plots are saved
// through gonum/plot, picking PNG, SVG, PDF or EPS from the file
// extension.
package eisplot

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var ErrDimension = errors.New("eisplot: frequency and impedance lengths differ")

// Series is one spectrum on a plot.
type Series struct {
	Name string
	F    []float64
	Z    []complex128

	// Line draws the series as a connected line instead of points.
	// Fitted spectra read better as lines over measured points.
	Line bool
}

func (s Series) validate() error {
	if len(s.F) != len(s.Z) {
		return fmt.Errorf("%w: series %q", ErrDimension, s.Name)
	}

	return nil
}

// Nyquist plots Z' against -Z''. unit labels the axes, typically "Ohm" for
// EIS and "Ohm/A" for the second harmonic. Both axes share the same span
// so that semicircles appear round.
func Nyquist(title, unit string, series ...Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("Z' (%s)", unit)
	p.Y.Label.Text = fmt.Sprintf("-Z'' (%s)", unit)

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)

	for _, s := range series {
		if err := s.validate(); err != nil {
			return nil, err
		}

		pts := make(plotter.XYs, len(s.Z))
		for i, z := range s.Z {
			pts[i].X = real(z)
			pts[i].Y = -imag(z)

			xmin = math.Min(xmin, pts[i].X)
			xmax = math.Max(xmax, pts[i].X)
			ymin = math.Min(ymin, pts[i].Y)
			ymax = math.Max(ymax, pts[i].Y)
		}

		if err := addSeries(p, s, pts); err != nil {
			return nil, err
		}
	}

	if len(series) > 0 {
		span := math.Max(xmax-xmin, ymax-ymin)
		p.X.Min, p.X.Max = xmin, xmin+span
		p.Y.Min, p.Y.Max = ymin, ymin+span
	}

	return p, nil
}

// Bode plots |Z| and the phase angle against frequency on a log axis. It
// returns the magnitude and phase plots separately.
func Bode(title, unit string, series ...Series) (mag, phase *plot.Plot, err error) {
	mag = plot.New()
	mag.Title.Text = title
	mag.X.Label.Text = "f (Hz)"
	mag.Y.Label.Text = fmt.Sprintf("|Z| (%s)", unit)
	mag.X.Scale = plot.LogScale{}
	mag.X.Tick.Marker = plot.LogTicks{Prec: -1}

	phase = plot.New()
	phase.Title.Text = title
	phase.X.Label.Text = "f (Hz)"
	phase.Y.Label.Text = "phase (deg)"
	phase.X.Scale = plot.LogScale{}
	phase.X.Tick.Marker = plot.LogTicks{Prec: -1}

	for _, s := range series {
		if err := s.validate(); err != nil {
			return nil, nil, err
		}

		magPts := make(plotter.XYs, len(s.Z))
		phasePts := make(plotter.XYs, len(s.Z))

		for i, z := range s.Z {
			magPts[i].X = s.F[i]
			magPts[i].Y = cmplx.Abs(z)

			phasePts[i].X = s.F[i]
			phasePts[i].Y = math.Atan2(imag(z), real(z)) * 180 / math.Pi
		}

		if err := addSeries(mag, s, magPts); err != nil {
			return nil, nil, err
		}

		if err := addSeries(phase, s, phasePts); err != nil {
			return nil, nil, err
		}
	}

	return mag, phase, nil
}

// Save writes p to path at the given size in inches. The format follows
// the file extension.
func Save(p *plot.Plot, path string, widthIn, heightIn float64) error {
	if err := p.Save(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, path); err != nil {
		return fmt.Errorf("eisplot: %w", err)
	}

	return nil
}

func addSeries(p *plot.Plot, s Series, pts plotter.XYs) error {
	if s.Line {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("eisplot: %w", err)
		}

		l.LineStyle.Width = vg.Points(1.5)

		p.Add(l)
		p.Legend.Add(s.Name, l)

		return nil
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("eisplot: %w", err)
	}

	sc.GlyphStyle.Radius = vg.Points(2.5)
	sc.Shape = draw.CircleGlyph{}

	p.Add(sc)
	p.Legend.Add(s.Name, sc)

	return nil
}
