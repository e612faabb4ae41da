// ===========================================================================
//
//                            PUBLIC DOMAIN NOTICE
//            National Center for Biotechnology Information (NCBI)
//
//  This software/database is a "United States Government Work" under the
//  terms of the United States Copyright Act. It was written as part of
//  the author's official duties as a United States Government employee and
//  thus cannot be copyrighted. This software/database is freely available
//  to the public for use. The National Library of Medicine and the U.S.
//  Government do not place any restriction on its use or reproduction.
//  We would, however, appreciate having the NCBI and the author cited in
//  any work or product based on this material.
//
//  Although all reasonable efforts have been taken to ensure the accuracy
//  and reliability of the software and data, the NLM and the U.S.
//  Government do not and cannot warrant the performance or results that
//  may be obtained by using this software or data. The NLM and the U.S.
//  Government disclaim all warranties, express or implied, including
//  warranties of performance, merchantability or fitness for any particular
//  purpose.
//
// ===========================================================================
//
// File Name:  store.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"database/sql"
	"fmt"
	_ "modernc.org/sqlite"
	"time"
)

// SQLITE REVISION STORE

const storeSchema = `
CREATE TABLE IF NOT EXISTS pages (
	id       INTEGER PRIMARY KEY,
	ns       INTEGER NOT NULL,
	title    TEXT NOT NULL,
	redirect TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS revisions (
	id        INTEGER PRIMARY KEY,
	page_id   INTEGER NOT NULL REFERENCES pages(id),
	parent_id INTEGER NOT NULL DEFAULT 0,
	timestamp TEXT NOT NULL,
	username  TEXT NOT NULL DEFAULT '',
	user_id   INTEGER NOT NULL DEFAULT 0,
	ip        TEXT NOT NULL DEFAULT '',
	minor     INTEGER NOT NULL DEFAULT 0,
	comment   TEXT NOT NULL DEFAULT '',
	text_id   INTEGER NOT NULL DEFAULT 0,
	bytes     INTEGER NOT NULL DEFAULT 0,
	sha1      TEXT NOT NULL DEFAULT '',
	model     TEXT NOT NULL DEFAULT '',
	format    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS revisions_page ON revisions(page_id);
`

// DefaultBatchSize is the number of revisions written per transaction
const DefaultBatchSize = 1000

// Store writes revisions and their pages to an SQLite database
type Store struct {
	db      *sql.DB
	tx      *sql.Tx
	pending int
	batch   int
	added   int
}

// OpenStore creates or opens a database and applies the schema
func OpenStore(path string) (*Store, error) {

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store '%s': %w", path, err)
	}
	// a single connection keeps in-memory databases and pragmas consistent
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL", "PRAGMA foreign_keys = ON"} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store schema: %w", err)
	}

	return &Store{db: db, batch: DefaultBatchSize}, nil
}

// DB exposes the underlying database for queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// Added is the number of revisions written so far
func (s *Store) Added() int {
	return s.added
}

// Add writes one revision, inserting its page the first time it is seen
func (s *Store) Add(rev *Revision) error {

	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("store begin: %w", err)
		}
		s.tx = tx
	}

	pg := &rev.Page
	if _, err := s.tx.Exec(`INSERT OR IGNORE INTO pages (id, ns, title, redirect) VALUES (?, ?, ?, ?)`,
		pg.ID, pg.NS, pg.Title, pg.Redirect); err != nil {
		return fmt.Errorf("store page %d: %w", pg.ID, err)
	}

	minor := 0
	if rev.Minor {
		minor = 1
	}
	usr := &rev.Contributor
	if _, err := s.tx.Exec(`INSERT OR REPLACE INTO revisions
		(id, page_id, parent_id, timestamp, username, user_id, ip, minor, comment, text_id, bytes, sha1, model, format)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rev.ID, pg.ID, rev.ParentID, rev.Timestamp.UTC().Format(time.RFC3339), usr.Username, usr.ID, usr.IP,
		minor, rev.Comment, rev.Text.ID, rev.Text.Bytes, rev.SHA1, rev.Model, rev.Format); err != nil {
		return fmt.Errorf("store revision %d: %w", rev.ID, err)
	}

	s.added++
	s.pending++
	if s.pending >= s.batch {
		return s.Flush()
	}

	return nil
}

// Flush commits the current batch
func (s *Store) Flush() error {

	if s.tx == nil {
		return nil
	}

	err := s.tx.Commit()
	s.tx = nil
	s.pending = 0
	if err != nil {
		return fmt.Errorf("store commit: %w", err)
	}

	return nil
}

// Close commits any pending revisions and closes the database
func (s *Store) Close() error {

	err := s.Flush()
	if cerr := s.db.Close(); cerr != nil && err == nil {
		err = cerr
	}

	return err
}
