package sqlite3

import (
	"database/sql"

	"github.com/Wisteria30/SearchEngine/database"
	_ "modernc.org/sqlite"
)

var queries = database.Queries{
	CreateDDLs: []string{
		`CREATE TABLE IF NOT EXISTS settings (
		  key   TEXT PRIMARY KEY,
		  value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
		  id      INTEGER PRIMARY KEY,
		  title   TEXT NOT NULL,
		  body    TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tokens (
		  id         INTEGER PRIMARY KEY,
		  token      TEXT NOT NULL,
		  docs_count INT NOT NULL,
		  postings   BLOB NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS token_index ON tokens(token);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS title_index ON documents(title);`,
	},

	SelectDocumentID:    `SELECT id FROM documents WHERE title = ?`,
	SelectDocumentTitle: `SELECT title FROM documents WHERE id = ?`,
	InsertDocument:      `INSERT INTO documents (title, body) VALUES (?, ?)`,
	UpdateDocumentBody:  `UPDATE documents SET body = ? WHERE id = ?`,
	SelectDocumentCount: `SELECT COUNT(*) FROM documents`,

	InsertToken:   `INSERT OR IGNORE INTO tokens (token, docs_count, postings) VALUES (?, 0, ?)`,
	SelectTokenID: `SELECT id, docs_count FROM tokens WHERE token = ?`,
	SelectToken:   `SELECT token FROM tokens WHERE id = ?`,

	SelectPostings: `SELECT docs_count, postings FROM tokens WHERE id = ?`,
	UpdatePostings: `UPDATE tokens SET docs_count = ?, postings = ? WHERE id = ?`,

	SelectSetting:  `SELECT value FROM settings WHERE key = ?`,
	ReplaceSetting: `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`,
}

func NewDatabase(config database.Config) (database.Database, error) {
	db, err := sql.Open("sqlite", config.DbName)
	if err != nil {
		return nil, err
	}
	return database.NewStore(db, config, queries)
}
