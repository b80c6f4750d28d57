// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb indexes the module events of executed blocks in sqlite.
package eventdb

import (
	"database/sql"
	"encoding/json"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/thor"
)

const schema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	blockNumber INTEGER NOT NULL,
	blockTime INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	module TEXT NOT NULL,
	name TEXT NOT NULL,
	accounts TEXT NOT NULL,
	attrs TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS event_block ON event(blockNumber, eventIndex);
CREATE INDEX IF NOT EXISTS event_kind ON event(module, name);
CREATE TABLE IF NOT EXISTS event_account (
	seq INTEGER NOT NULL,
	account BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS event_account_idx ON event_account(account, seq);
`

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

// Event is an indexed event with its position in the chain.
type Event struct {
	BlockNumber uint32            `json:"blockNumber"`
	BlockTime   uint64            `json:"blockTime"`
	Index       uint32            `json:"index"`
	Module      string            `json:"module"`
	Name        string            `json:"name"`
	Accounts    []thor.Address    `json:"accounts"`
	Attrs       map[string]string `json:"attrs,omitempty"`
}

// NewEvents positions the events of a block.
func NewEvents(number uint32, time uint64, evs []*events.Event) []*Event {
	out := make([]*Event, 0, len(evs))
	for i, ev := range evs {
		out = append(out, &Event{
			BlockNumber: number,
			BlockTime:   time,
			Index:       uint32(i),
			Module:      ev.Module,
			Name:        ev.Name,
			Accounts:    ev.Accounts,
			Attrs:       ev.Attrs,
		})
	}
	return out
}

// Filter selects events. Zero fields match everything.
type Filter struct {
	From    uint32
	To      *uint32
	Account *thor.Address
	Module  string
	Name    string
	Order   OrderType
	Offset  uint64
	Limit   uint64
}

// EventDB manages all events.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an event db.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every connection would get its own memory db
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory sqlite db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert indexes events, all or nothing.
func (db *EventDB) Insert(evs []*Event) error {
	if len(evs) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, ev := range evs {
		accounts, err := json.Marshal(ev.Accounts)
		if err != nil {
			tx.Rollback()
			return err
		}
		attrs, err := json.Marshal(ev.Attrs)
		if err != nil {
			tx.Rollback()
			return err
		}
		res, err := tx.Exec("INSERT INTO event(blockNumber, blockTime, eventIndex, module, name, accounts, attrs) VALUES (?, ?, ?, ?, ?, ?, ?);",
			ev.BlockNumber,
			ev.BlockTime,
			ev.Index,
			ev.Module,
			ev.Name,
			string(accounts),
			string(attrs))
		if err != nil {
			tx.Rollback()
			return err
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		for _, acc := range ev.Accounts {
			if _, err := tx.Exec("INSERT INTO event_account(seq, account) VALUES (?, ?);", seq, acc.Bytes()); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// Truncate removes the events of blocks after number.
func (db *EventDB) Truncate(number uint32) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM event_account WHERE seq IN (SELECT seq FROM event WHERE blockNumber > ?);", number); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM event WHERE blockNumber > ?;", number); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Filter returns the events matching filter.
func (db *EventDB) Filter(filter *Filter) ([]*Event, error) {
	const columns = "SELECT e.blockNumber, e.blockTime, e.eventIndex, e.module, e.name, e.accounts, e.attrs FROM event e"
	if filter == nil {
		return db.query(columns + " ORDER BY e.seq")
	}

	var (
		stmt  strings.Builder
		args  []any
		where = " WHERE e.blockNumber >= ?"
	)
	stmt.WriteString(columns)
	args = append(args, filter.From)
	if filter.Account != nil {
		stmt.WriteString(" JOIN event_account a ON a.seq = e.seq")
		where += " AND a.account = ?"
		args = append(args, filter.Account.Bytes())
	}
	if filter.To != nil {
		where += " AND e.blockNumber <= ?"
		args = append(args, *filter.To)
	}
	if filter.Module != "" {
		where += " AND e.module = ?"
		args = append(args, filter.Module)
	}
	if filter.Name != "" {
		where += " AND e.name = ?"
		args = append(args, filter.Name)
	}
	stmt.WriteString(where)

	if filter.Order == DESC {
		stmt.WriteString(" ORDER BY e.seq DESC")
	} else {
		stmt.WriteString(" ORDER BY e.seq ASC")
	}
	if filter.Limit > 0 {
		stmt.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}
	return db.query(stmt.String(), args...)
}

func (db *EventDB) query(stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evs []*Event
	for rows.Next() {
		var (
			ev       Event
			accounts string
			attrs    string
		)
		if err := rows.Scan(
			&ev.BlockNumber,
			&ev.BlockTime,
			&ev.Index,
			&ev.Module,
			&ev.Name,
			&accounts,
			&attrs,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(accounts), &ev.Accounts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attrs), &ev.Attrs); err != nil {
			return nil, err
		}
		evs = append(evs, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return evs, nil
}

// Path returns the db's path.
func (db *EventDB) Path() string {
	return db.path
}

// SQLiteVersion returns the version of the linked sqlite library.
func (db *EventDB) SQLiteVersion() string {
	return db.sqliteVersion
}

func (db *EventDB) Close() error {
	return db.db.Close()
}
