// Package dataio loads, writes and preprocesses measured impedance
// spectra. Files are plain CSV with three columns per row: frequency in
// Hz, real impedance and imaginary impedance. A single non-numeric header
// row is tolerated.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

var (
	ErrDimension = errors.New("dataio: frequency and impedance lengths differ")
	ErrColumns   = errors.New("dataio: expected 3 columns (freq, real, imag)")
)

const defaultMaxFreq = 10.0

// ReadCSV reads a spectrum from path. Parse failures report the offending
// row.
func ReadCSV(path string) (f []float64, z []complex128, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dataio: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("dataio: %s: %w", path, err)
	}

	for i, row := range rows {
		if len(row) != 3 {
			return nil, nil, fmt.Errorf("%w: %s row %d has %d", ErrColumns, path, i+1, len(row))
		}

		fi, err1 := strconv.ParseFloat(row[0], 64)
		re, err2 := strconv.ParseFloat(row[1], 64)
		im, err3 := strconv.ParseFloat(row[2], 64)

		if err1 != nil || err2 != nil || err3 != nil {
			if i == 0 {
				continue // header
			}

			return nil, nil, fmt.Errorf("dataio: %s row %d: bad number %q", path, i+1, row)
		}

		f = append(f, fi)
		z = append(z, complex(re, im))
	}

	return f, z, nil
}

// WriteCSV writes a spectrum to path with a freq,real,imag header.
func WriteCSV(path string, f []float64, z []complex128) error {
	if len(f) != len(z) {
		return ErrDimension
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataio: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if err := w.Write([]string{"freq", "real", "imag"}); err != nil {
		return fmt.Errorf("dataio: %w", err)
	}

	for i, fi := range f {
		row := []string{
			strconv.FormatFloat(fi, 'g', -1, 64),
			strconv.FormatFloat(real(z[i]), 'g', -1, 64),
			strconv.FormatFloat(imag(z[i]), 'g', -1, 64),
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("dataio: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("dataio: %w", err)
	}

	return file.Close()
}

// Spectra holds a preprocessed pair of harmonics. F, Z1 and Z2 share one
// frequency grid with inductive points removed; F2 and Z2Trunc carry the
// second harmonic additionally truncated to frequencies below the
// measurable maximum.
type Spectra struct {
	F  []float64
	Z1 []complex128
	Z2 []complex128

	F2      []float64
	Z2Trunc []complex128
}

// Process prepares measured EIS and 2nd-NLEIS spectra for fitting. Points
// with non-negative imaginary EIS impedance are dropped from all arrays,
// and the second harmonic is truncated to f < maxFreq. maxFreq <= 0
// selects 10 Hz.
func Process(f []float64, z1, z2 []complex128, maxFreq float64) (Spectra, error) {
	if len(f) != len(z1) || len(f) != len(z2) {
		return Spectra{}, ErrDimension
	}

	if maxFreq <= 0 {
		maxFreq = defaultMaxFreq
	}

	var s Spectra

	for i, fi := range f {
		if imag(z1[i]) >= 0 {
			continue
		}

		s.F = append(s.F, fi)
		s.Z1 = append(s.Z1, z1[i])
		s.Z2 = append(s.Z2, z2[i])

		if fi < maxFreq {
			s.F2 = append(s.F2, fi)
			s.Z2Trunc = append(s.Z2Trunc, z2[i])
		}
	}

	return s, nil
}
