// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auditdb persists the engine's observable outputs: event
// creations, deposits, claims, eligibility-tag updates and emergency
// sweeps.
package auditdb

import (
	"context"
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/epochfarm/farm"
)

const recordTableSchema = `
create table if not exists record (
	seq integer primary key autoincrement,
	kind text not null,
	eventID integer,
	participant text,
	amount integer,
	units integer,
	reward integer,
	epoch integer,
	detail text
);

CREATE INDEX if not exists kindIndex on record(kind);
CREATE INDEX if not exists eventIndex on record(eventID);
CREATE INDEX if not exists participantIndex on record(participant);
`

// AuditDB is a sqlite-backed, append-only audit record store.
type AuditDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the audit db at the given path.
func New(path string) (auditDB *AuditDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if auditDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(recordTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &AuditDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem creates an audit db in ram.
func NewMem() (*AuditDB, error) {
	return New(":memory:")
}

// Close closes the audit db.
func (db *AuditDB) Close() error {
	return db.db.Close()
}

func (db *AuditDB) Path() string {
	return db.path
}

// Save appends one record and fills in its sequence number.
func (db *AuditDB) Save(r *Record) error {
	res, err := db.db.Exec(
		"INSERT INTO record(kind, eventID, participant, amount, units, reward, epoch, detail) VALUES (?, ?, ?, ?, ?, ?, ?, ?);",
		string(r.Kind),
		r.EventID,
		string(r.Participant),
		r.Amount,
		r.Units,
		r.Reward,
		r.Epoch,
		r.Detail,
	)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.Seq = uint64(seq)
	return nil
}

// FilterRecords returns records matching the filter. A nil filter returns
// everything in insertion order.
func (db *AuditDB) FilterRecords(ctx context.Context, filter *Filter) ([]*Record, error) {
	if filter == nil {
		return db.queryRecords(ctx, "SELECT * FROM record ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT * FROM record WHERE 1"
	for i, kind := range filter.Kinds {
		if i == 0 {
			stmt += " AND ( kind = ?"
		} else {
			stmt += " OR kind = ?"
		}
		args = append(args, string(kind))
		if i == len(filter.Kinds)-1 {
			stmt += " )"
		}
	}
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		stmt += " AND eventID = ? "
	}
	if filter.Participant != nil {
		args = append(args, string(*filter.Participant))
		stmt += " AND participant = ? "
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND epoch >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND epoch <= ? "
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryRecords(ctx, stmt, args...)
}

func (db *AuditDB) queryRecords(ctx context.Context, stmt string, args ...any) ([]*Record, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq         uint64
			kind        string
			eventID     uint64
			participant string
			amount      uint64
			units       uint64
			reward      uint64
			epoch       uint32
			detail      string
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&eventID,
			&participant,
			&amount,
			&units,
			&reward,
			&epoch,
			&detail,
		); err != nil {
			return nil, err
		}
		records = append(records, &Record{
			Seq:         seq,
			Kind:        Kind(kind),
			EventID:     eventID,
			Participant: farm.Account(participant),
			Amount:      amount,
			Units:       units,
			Reward:      reward,
			Epoch:       epoch,
			Detail:      detail,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
