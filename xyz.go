/*
 * xyz.go, part of goScatter.
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

package scatter

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rmera/goscatter/v3"
)

// DefaultTargetKey is the comment-line key the target property is read from.
const DefaultTargetKey = "energy"

// ReadXYZFile reads all the frames of the multi-frame XYZ file xyzname.
// See ReadXYZ.
func ReadXYZFile(xyzname string, targetKey string) ([]*Molecule, []float64, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, nil, err
	}
	defer xyzfile.Close()
	mols, targets, err := ReadXYZ(xyzfile, targetKey)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", xyzname, err)
	}
	return mols, targets, nil
}

// ReadXYZ reads a sequence of XYZ frames, one molecule each. The first column of
// an atom line is either an element symbol or a nuclear charge. The comment line
// is a list of key=value tokens: the target is taken from targetKey (DefaultTargetKey
// if empty) or, failing that, from the first bare number in the line; id= gives the
// molecule identifier, which otherwise is the frame index. Frames without a target
// get NaN.
func ReadXYZ(r io.Reader, targetKey string) ([]*Molecule, []float64, error) {
	if targetKey == "" {
		targetKey = DefaultTargetKey
	}
	xyz := bufio.NewScanner(r)
	xyz.Buffer(make([]byte, 64*1024), 1024*1024)
	lineno := 0
	next := func() (string, bool) {
		if !xyz.Scan() {
			return "", false
		}
		lineno++
		return xyz.Text(), true
	}
	var mols []*Molecule
	var targets []float64
	for frame := 0; ; frame++ {
		line, ok := next()
		for ok && strings.TrimSpace(line) == "" {
			line, ok = next()
		}
		if !ok {
			break
		}
		natoms, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || natoms < 1 {
			return nil, nil, fmt.Errorf("ill formatted XYZ: line %d: expected a positive number of atoms, got %q", lineno, line)
		}
		comment, ok := next()
		if !ok {
			return nil, nil, fmt.Errorf("ill formatted XYZ: frame %d truncated after the atom count", frame)
		}
		id, target := parseXYZComment(comment, targetKey)
		if id == "" {
			id = strconv.Itoa(frame)
		}
		coords := make([]float64, 0, 3*natoms)
		charges := make([]float64, natoms)
		symbols := make([]string, natoms)
		for i := 0; i < natoms; i++ {
			line, ok = next()
			if !ok {
				return nil, nil, fmt.Errorf("ill formatted XYZ: frame %d has %d atoms, expected %d", frame, i, natoms)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("ill formatted XYZ: line %d: %q", lineno, line)
			}
			charges[i], symbols[i], err = parseElement(fields[0])
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineno, err)
			}
			for _, f := range fields[1:4] {
				c, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, nil, fmt.Errorf("ill formatted XYZ: line %d: %w", lineno, err)
				}
				coords = append(coords, c)
			}
		}
		m, err := v3.NewMatrix(coords)
		if err != nil {
			return nil, nil, err
		}
		mol, err := NewMolecule(id, m, charges, symbols)
		if err != nil {
			return nil, nil, DecorateError(err, "ReadXYZ")
		}
		mols = append(mols, mol)
		targets = append(targets, target)
	}
	if err := xyz.Err(); err != nil {
		return nil, nil, err
	}
	return mols, targets, nil
}

func parseElement(field string) (float64, string, error) {
	if z, err := strconv.ParseFloat(field, 64); err == nil {
		return z, ZToSymbol(z), nil
	}
	z, ok := SymbolToZ(field)
	if !ok {
		return 0, "", fmt.Errorf("unknown element %q", field)
	}
	return z, ZToSymbol(z), nil
}

func parseXYZComment(comment, targetKey string) (string, float64) {
	id := ""
	target := math.NaN()
	bare := math.NaN()
	for _, tok := range strings.Fields(comment) {
		key, val, found := strings.Cut(tok, "=")
		if !found {
			if v, err := strconv.ParseFloat(tok, 64); err == nil && math.IsNaN(bare) {
				bare = v
			}
			continue
		}
		switch key {
		case "id":
			id = val
		case targetKey:
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				target = v
			}
		}
	}
	if math.IsNaN(target) {
		target = bare
	}
	return id, target
}

// WriteXYZ writes mol as one XYZ frame to out. The comment line carries the
// molecule ID and, if it is not NaN, the target under DefaultTargetKey.
func WriteXYZ(out io.Writer, mol *Molecule, target float64) error {
	if err := mol.Check(); err != nil {
		return err
	}
	comment := ""
	if mol.ID() != "" {
		comment = "id=" + mol.ID()
	}
	if !math.IsNaN(target) {
		comment = strings.TrimSpace(fmt.Sprintf("%s %s=%g", comment, DefaultTargetKey, target))
	}
	if _, err := fmt.Fprintf(out, "%-4d\n%s\n", mol.Len(), comment); err != nil {
		return err
	}
	for i := 0; i < mol.Len(); i++ {
		c := mol.Position(i)
		sym := mol.Symbol(i)
		if _, ok := SymbolToZ(sym); !ok {
			sym = strconv.FormatFloat(mol.Charge(i), 'g', -1, 64)
		}
		if _, err := fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f\n", sym, c[0], c[1], c[2]); err != nil {
			return err
		}
	}
	return nil
}
