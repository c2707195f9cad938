/*
 * io.go, part of goScatter.
 *
 * Copyright 2026 The goScatter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package features

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	scatter "github.com/rmera/goscatter"
)

const matrixFormat = "goscatter-features/1"

// Matrix is a set of feature vectors, one row per molecule, with the column names,
// the molecule IDs, their targets (NaN if unknown) and free-form metadata, such as
// the parameters used to compute the features.
type Matrix struct {
	Names   []string
	IDs     []string
	Rows    [][]float64
	Targets []float64
	Meta    map[string]string
}

// Dims returns the number of rows and columns of the matrix.
func (M *Matrix) Dims() (int, int) { return len(M.Rows), len(M.Names) }

// Check returns a DimensionMismatchError if rows, IDs, targets and names disagree.
func (M *Matrix) Check() error {
	if len(M.IDs) != len(M.Rows) || len(M.Targets) != len(M.Rows) {
		return scatter.DimensionMismatchError("%d rows, %d IDs, %d targets", len(M.Rows), len(M.IDs), len(M.Targets))
	}
	for i, r := range M.Rows {
		if len(r) != len(M.Names) {
			return scatter.DimensionMismatchError("row %d has %d columns, expected %d", i, len(r), len(M.Names))
		}
	}
	return nil
}

// Labeled returns the indexes of the rows whose target is known.
func (M *Matrix) Labeled() []int {
	var ret []int
	for i, t := range M.Targets {
		if !math.IsNaN(t) {
			ret = append(ret, i)
		}
	}
	return ret
}

// Subset returns a matrix with the rows in idx, sharing the row slices with M.
func (M *Matrix) Subset(idx []int) *Matrix {
	S := &Matrix{Names: M.Names, Meta: M.Meta}
	for _, i := range idx {
		S.Rows = append(S.Rows, M.Rows[i])
		S.IDs = append(S.IDs, M.IDs[i])
		S.Targets = append(S.Targets, M.Targets[i])
	}
	return S
}

// WriteMatrix writes M to out, compressed with zstd. compressionLevel is an optional
// zstd level (1 to 22); the default is the best compression.
func WriteMatrix(out io.Writer, M *Matrix, compressionLevel ...int) error {
	if err := M.Check(); err != nil {
		return err
	}
	level := zstd.SpeedBestCompression
	if len(compressionLevel) > 0 {
		level = zstd.EncoderLevelFromZstd(compressionLevel[0])
	}
	z, err := zstd.NewWriter(out, zstd.WithEncoderLevel(level))
	if err != nil {
		return err
	}
	w := bufio.NewWriter(z)
	fmt.Fprintf(w, "format=%s\n", matrixFormat)
	keys := make([]string, 0, len(M.Meta))
	for k := range M.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.ContainsAny(k, "=\n") || strings.Contains(M.Meta[k], "\n") || k == "format" || k == "names" {
			z.Close()
			return fmt.Errorf("invalid metadata entry %q", k)
		}
		fmt.Fprintf(w, "%s=%s\n", k, M.Meta[k])
	}
	fmt.Fprintf(w, "names=%s\n", strings.Join(M.Names, ","))
	fmt.Fprintf(w, "** %d %d\n", len(M.Rows), len(M.Names))
	vals := make([]string, len(M.Names))
	for i, r := range M.Rows {
		for j, v := range r {
			vals[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", M.IDs[i], strconv.FormatFloat(M.Targets[i], 'g', -1, 64), strings.Join(vals, " "))
	}
	if err := w.Flush(); err != nil {
		z.Close()
		return err
	}
	return z.Close()
}

// ReadMatrix reads a matrix written by WriteMatrix.
func ReadMatrix(in io.Reader) (*Matrix, error) {
	z, err := zstd.NewReader(in)
	if err != nil {
		return nil, err
	}
	defer z.Close()
	r := bufio.NewScanner(z)
	r.Buffer(make([]byte, 64*1024), 64*1024*1024)
	M := &Matrix{Meta: make(map[string]string)}
	rows, cols := -1, -1
	for r.Scan() {
		line := r.Text()
		if strings.HasPrefix(line, "** ") {
			if _, err := fmt.Sscanf(line, "** %d %d", &rows, &cols); err != nil {
				return nil, fmt.Errorf("malformed feature matrix size line %q: %w", line, err)
			}
			break
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed feature matrix header line %q", line)
		}
		switch k {
		case "format":
			if v != matrixFormat {
				return nil, fmt.Errorf("unsupported feature matrix format %q", v)
			}
		case "names":
			if v != "" {
				M.Names = strings.Split(v, ",")
			}
		default:
			M.Meta[k] = v
		}
	}
	if rows < 0 {
		if err := r.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("feature matrix without size line")
	}
	if cols != len(M.Names) {
		return nil, scatter.DimensionMismatchError("feature matrix declares %d columns but has %d names", cols, len(M.Names))
	}
	for i := 0; i < rows; i++ {
		if !r.Scan() {
			if err := r.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("feature matrix truncated at row %d of %d", i, rows)
		}
		fields := strings.Split(r.Text(), "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed feature matrix row %d", i)
		}
		target, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		vals := strings.Fields(fields[2])
		if len(vals) != cols {
			return nil, scatter.DimensionMismatchError("row %d has %d values, expected %d", i, len(vals), cols)
		}
		row := make([]float64, cols)
		for j, s := range vals {
			if row[j], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		M.IDs = append(M.IDs, fields[0])
		M.Targets = append(M.Targets, target)
		M.Rows = append(M.Rows, row)
	}
	return M, nil
}

// SaveMatrix writes M to the file name, creating or truncating it.
func SaveMatrix(name string, M *Matrix, compressionLevel ...int) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := WriteMatrix(f, M, compressionLevel...); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

// LoadMatrix reads a matrix from the file name.
func LoadMatrix(name string) (*Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	M, err := ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return M, nil
}
