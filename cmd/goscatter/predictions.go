package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// Prediction files are tab-separated: a header, then id, prediction and
// reference target (NaN when unknown) per molecule.
var predictionHeader = []string{"id", "predicted", "target"}

func writePredictions(out io.Writer, ids []string, pred, targets []float64) error {
	w := csv.NewWriter(out)
	w.Comma = '\t'
	if err := w.Write(predictionHeader); err != nil {
		return err
	}
	for i, id := range ids {
		rec := []string{id, strconv.FormatFloat(pred[i], 'g', -1, 64), strconv.FormatFloat(targets[i], 'g', -1, 64)}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func savePredictions(name string, ids []string, pred, targets []float64) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := writePredictions(bw, ids, pred, targets); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readPredictions(in io.Reader) (ids []string, pred, targets []float64, err error) {
	r := csv.NewReader(in)
	r.Comma = '\t'
	r.FieldsPerRecord = len(predictionHeader)
	recs, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(recs) == 0 || recs[0][0] != predictionHeader[0] {
		return nil, nil, nil, fmt.Errorf("not a prediction file")
	}
	for line, rec := range recs[1:] {
		p, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		t, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		ids = append(ids, rec[0])
		pred = append(pred, p)
		targets = append(targets, t)
	}
	return ids, pred, targets, nil
}

// loadLabeledPredictions reads a prediction file and keeps the molecules with
// a known target.
func loadLabeledPredictions(name string) (pred, targets []float64, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	_, p, t, err := readPredictions(bufio.NewReader(f))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	for i := range p {
		if !math.IsNaN(t[i]) {
			pred = append(pred, p[i])
			targets = append(targets, t[i])
		}
	}
	return pred, targets, nil
}
