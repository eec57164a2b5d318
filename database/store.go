package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Queries is the statement set a dialect adapter supplies. Placeholder
// syntax and DDL are the adapter's business; the generic store only
// decides what to run and with which arguments.
type Queries struct {
	CreateDDLs []string

	SelectDocumentID    string // title -> id
	SelectDocumentTitle string // id -> title
	InsertDocument      string // (title, body)
	UpdateDocumentBody  string // (body, id)
	SelectDocumentCount string

	InsertToken   string // (token, empty blob), ignoring duplicates
	SelectTokenID string // token -> (id, docs_count)
	SelectToken   string // id -> token

	SelectPostings string // token id -> (docs_count, blob)
	UpdatePostings string // (docs_count, blob, token id)

	SelectSetting  string // key -> value
	ReplaceSetting string // (key, value), replace semantics
}

const (
	busyRetryLimit = 100
	busyRetryWait  = 10 * time.Millisecond
)

// Store implements Database over any database/sql driver using a
// dialect's statement set.
type Store struct {
	config  Config
	db      *sql.DB
	tx      *sql.Tx
	queries Queries
}

// NewStore opens the schema (creating missing tables) and returns a
// ready store.
func NewStore(db *sql.DB, config Config, queries Queries) (*Store, error) {
	// The indexer batches everything into one transaction on one
	// connection; extra pooled connections would only fight over locks.
	db.SetMaxOpenConns(1)
	for _, ddl := range queries.CreateDDLs {
		if _, err := db.Exec(ddl); err != nil {
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
	}
	return &Store{config: config, db: db, queries: queries}, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// exec runs a statement, transparently retrying transient busy errors.
func (s *Store) exec(query string, args ...any) error {
	for i := 0; ; i++ {
		_, err := s.q().Exec(query, args...)
		if err == nil {
			return nil
		}
		if !isBusy(err) || i >= busyRetryLimit {
			return err
		}
		time.Sleep(busyRetryWait)
	}
}

func (s *Store) AddDocument(title, body string) (int, error) {
	id, err := s.GetDocumentID(title)
	if err != nil {
		return 0, err
	}
	if id > 0 {
		if err := s.exec(s.queries.UpdateDocumentBody, body, id); err != nil {
			return 0, fmt.Errorf("update document %q: %w", title, err)
		}
		return id, nil
	}
	if err := s.exec(s.queries.InsertDocument, title, body); err != nil {
		return 0, fmt.Errorf("insert document %q: %w", title, err)
	}
	return s.GetDocumentID(title)
}

func (s *Store) GetDocumentID(title string) (int, error) {
	var id int
	err := s.q().QueryRow(s.queries.SelectDocumentID, title).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, err
}

func (s *Store) GetDocumentTitle(id int) (string, error) {
	var title string
	err := s.q().QueryRow(s.queries.SelectDocumentTitle, id).Scan(&title)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return title, err
}

func (s *Store) GetDocumentCount() (int, error) {
	var count int
	err := s.q().QueryRow(s.queries.SelectDocumentCount).Scan(&count)
	return count, err
}

func (s *Store) GetTokenID(token string, insert bool) (int, int, error) {
	if insert {
		if err := s.exec(s.queries.InsertToken, token, []byte{}); err != nil {
			return 0, 0, fmt.Errorf("insert token %q: %w", token, err)
		}
	}
	var id, docsCount int
	err := s.q().QueryRow(s.queries.SelectTokenID, token).Scan(&id, &docsCount)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return id, docsCount, err
}

func (s *Store) GetToken(id int) (string, error) {
	var token string
	err := s.q().QueryRow(s.queries.SelectToken, id).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return token, err
}

func (s *Store) GetPostings(tokenID int) (int, []byte, error) {
	var docsCount int
	var blob []byte
	err := s.q().QueryRow(s.queries.SelectPostings, tokenID).Scan(&docsCount, &blob)
	if err == sql.ErrNoRows {
		return 0, nil, nil
	}
	return docsCount, blob, err
}

func (s *Store) UpdatePostings(tokenID, docsCount int, blob []byte) error {
	if err := s.exec(s.queries.UpdatePostings, docsCount, blob, tokenID); err != nil {
		return fmt.Errorf("update postings of token %d: %w", tokenID, err)
	}
	return nil
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.q().QueryRow(s.queries.SelectSetting, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Store) ReplaceSetting(key, value string) error {
	return s.exec(s.queries.ReplaceSetting, key, value)
}

func (s *Store) Begin() error {
	if s.tx != nil {
		return fmt.Errorf("transaction already in progress")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

func (s *Store) Commit() error {
	if s.tx == nil {
		return fmt.Errorf("no transaction in progress")
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

func (s *Store) Rollback() error {
	if s.tx == nil {
		return fmt.Errorf("no transaction in progress")
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}
