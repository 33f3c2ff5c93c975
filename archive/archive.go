// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive keeps completed sweeps in a SQL database, so that
// datasets from different machines or builds can be kept side by side
// and reloaded later.
package archive

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/cilkscale/scalebench/dataset"
)

// ErrNotFound is returned by Load for an unknown sweep ID.
var ErrNotFound = errors.New("sweep not found")

// DB is an archive of sweeps backed by a SQL database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB

	insertSweep *sql.Stmt
	selectSweep *sql.Stmt
	selectCells *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is evaluated with . as a map containing one entry whose
// key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Sweeps (
	SweepID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Label VARCHAR(255),
	Created BIGINT
);
CREATE TABLE IF NOT EXISTS Cells (
	SweepID BIGINT UNSIGNED,
	RowIndex BIGINT UNSIGNED,
	ColumnIndex BIGINT UNSIGNED,
	Value VARCHAR(1024),
	PRIMARY KEY (SweepID, RowIndex, ColumnIndex),
	FOREIGN KEY (SweepID) REFERENCES Sweeps(SweepID) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

func (db *DB) prepareStatements() error {
	var err error
	db.insertSweep, err = db.sql.Prepare("INSERT INTO Sweeps(Label, Created) VALUES (?, ?)")
	if err != nil {
		return err
	}
	db.selectSweep, err = db.sql.Prepare("SELECT Label, Created FROM Sweeps WHERE SweepID = ?")
	if err != nil {
		return err
	}
	db.selectCells, err = db.sql.Prepare("SELECT RowIndex, ColumnIndex, Value FROM Cells WHERE SweepID = ? ORDER BY RowIndex, ColumnIndex")
	return err
}

// A Sweep describes an archived dataset.
type Sweep struct {
	ID      int64
	Label   string
	Created time.Time
}

// Store archives d as a new sweep and returns its description. Every
// cell of d is stored with its row and column position, so Load
// returns d unchanged, including rows shorter than the header.
func (db *DB) Store(ctx context.Context, label string, created time.Time, d *dataset.Dataset) (_ *Sweep, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertSweep).ExecContext(ctx, label, created.Unix())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	rows := append([][]string{d.Header}, d.Rows...)
	for r, row := range rows {
		if len(row) == 0 {
			continue
		}
		args := make([]interface{}, 0, 4*len(row))
		for c, v := range row {
			args = append(args, id, r, c, v)
		}
		query := "INSERT INTO Cells VALUES " + strings.Repeat("(?, ?, ?, ?), ", len(row))
		query = strings.TrimSuffix(query, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}
	return &Sweep{ID: id, Label: label, Created: time.Unix(created.Unix(), 0)}, nil
}

// Load returns the dataset archived under id.
func (db *DB) Load(ctx context.Context, id int64) (*dataset.Dataset, *Sweep, error) {
	s := &Sweep{ID: id}
	var created int64
	err := db.selectSweep.QueryRowContext(ctx, id).Scan(&s.Label, &created)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("sweep %d: %w", id, ErrNotFound)
	} else if err != nil {
		return nil, nil, err
	}
	s.Created = time.Unix(created, 0)

	rows, err := db.selectCells.QueryContext(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var table [][]string
	for rows.Next() {
		var r, c int
		var v string
		if err := rows.Scan(&r, &c, &v); err != nil {
			return nil, nil, err
		}
		for len(table) <= r {
			table = append(table, nil)
		}
		if c != len(table[r]) {
			return nil, nil, fmt.Errorf("sweep %d: row %d is missing column %d", id, r, len(table[r]))
		}
		table[r] = append(table[r], v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(table) == 0 {
		return nil, nil, fmt.Errorf("sweep %d has no header", id)
	}
	return &dataset.Dataset{Header: table[0], Rows: table[1:]}, s, nil
}

// List returns the archived sweeps, most recent first.
func (db *DB) List(ctx context.Context) ([]*Sweep, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT SweepID, Label, Created FROM Sweeps ORDER BY SweepID DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Sweep
	for rows.Next() {
		s := new(Sweep)
		var created int64
		if err := rows.Scan(&s.ID, &s.Label, &created); err != nil {
			return nil, err
		}
		s.Created = time.Unix(created, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountSweeps returns the number of archived sweeps.
func (db *DB) CountSweeps() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Sweeps").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertSweep, db.selectSweep, db.selectCells} {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
