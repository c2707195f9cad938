/*
 * store.go, part of goScatter.
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

// Package store keeps trained regression models, with their cross-validation
// scores and the parameters of the features they were trained on, in a SQLite
// database.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rmera/goscatter/regress"
)

//go:embed schema.sql
var schemaSQL string

// Fixed width, so creation times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no model matches a lookup.
var ErrNotFound = errors.New("store: model not found")

// Record describes a stored model.
type Record struct {
	ID        string
	Name      string
	Kind      regress.Kind
	Alpha     float64
	NFeatures int
	NSamples  int
	CVMetric  string
	CVScore   float64
	TrainMAE  float64
	TrainRMSE float64
	Meta      map[string]string
	CreatedAt time.Time
}

// Store is a model database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens, creating it if needed, the database at path and initializes its
// schema. Use ":memory:" for a database that lives as long as the Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open sqlite database: %w", err)
	}
	// One connection, so an in-memory database is not lost between queries.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the location of the database.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores M and returns its record, with a new ID and creation time. The
// Kind, Alpha, NFeatures fields of rec are taken from M; the rest is stored as given.
func (s *Store) Save(M *regress.Model, rec Record) (*Record, error) {
	if M == nil {
		return nil, fmt.Errorf("store: nil model")
	}
	blob, err := json.Marshal(M)
	if err != nil {
		return nil, fmt.Errorf("store: failed to encode model: %w", err)
	}
	if rec.Meta == nil {
		rec.Meta = map[string]string{}
	}
	meta, err := json.Marshal(rec.Meta)
	if err != nil {
		return nil, fmt.Errorf("store: failed to encode metadata: %w", err)
	}
	rec.ID = uuid.New().String()
	rec.Kind = M.Kind
	rec.Alpha = M.Alpha
	rec.NFeatures = len(M.Weights)
	rec.CreatedAt = time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO models (id, name, kind, alpha, n_features, n_samples, cv_metric, cv_score, train_mae, train_rmse, meta, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, string(rec.Kind), rec.Alpha, rec.NFeatures, rec.NSamples, rec.CVMetric,
		nullFloat(rec.CVScore), nullFloat(rec.TrainMAE), nullFloat(rec.TrainRMSE),
		string(meta), blob, rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to save model: %w", err)
	}
	return &rec, nil
}

const recordColumns = `id, name, kind, alpha, n_features, n_samples, cv_metric, cv_score, train_mae, train_rmse, meta, created_at`

// Load returns the model with the given ID and its record. An empty id selects
// the most recent model.
func (s *Store) Load(id string) (*regress.Model, *Record, error) {
	var row *sql.Row
	if id == "" {
		row = s.db.QueryRow(`SELECT ` + recordColumns + `, model FROM models ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	} else {
		row = s.db.QueryRow(`SELECT `+recordColumns+`, model FROM models WHERE id = ?`, id)
	}
	var blob []byte
	rec, err := scanRecord(row, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: failed to load model: %w", err)
	}
	M := new(regress.Model)
	if err := json.Unmarshal(blob, M); err != nil {
		return nil, nil, fmt.Errorf("store: failed to decode model %s: %w", rec.ID, err)
	}
	return M, rec, nil
}

// Latest returns the most recently saved model.
func (s *Store) Latest() (*regress.Model, *Record, error) { return s.Load("") }

// List returns the records of all models, newest first.
func (s *Store) List() ([]*Record, error) {
	rows, err := s.db.Query(`SELECT ` + recordColumns + ` FROM models ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list models: %w", err)
	}
	defer rows.Close()
	var ret []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: failed to list models: %w", err)
		}
		ret = append(ret, rec)
	}
	return ret, rows.Err()
}

// Delete removes the model with the given ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: failed to delete model: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner, extra ...any) (*Record, error) {
	rec := &Record{}
	var kind, meta, created string
	var cv, mae, rmse sql.NullFloat64
	dest := []any{&rec.ID, &rec.Name, &kind, &rec.Alpha, &rec.NFeatures, &rec.NSamples, &rec.CVMetric, &cv, &mae, &rmse, &meta, &created}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	rec.Kind = regress.Kind(kind)
	rec.CVScore = fromNull(cv)
	rec.TrainMAE = fromNull(mae)
	rec.TrainRMSE = fromNull(rmse)
	if err := json.Unmarshal([]byte(meta), &rec.Meta); err != nil {
		return nil, fmt.Errorf("model %s: bad metadata: %w", rec.ID, err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("model %s: bad creation time: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return rec, nil
}

// SQLite has no NaN; unknown scores are stored as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
