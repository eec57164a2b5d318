package postgres

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/lib/pq"

	"github.com/Wisteria30/SearchEngine/database"
)

var queries = database.Queries{
	CreateDDLs: []string{
		`CREATE TABLE IF NOT EXISTS settings (
		  key   TEXT PRIMARY KEY,
		  value TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
		  id    SERIAL PRIMARY KEY,
		  title TEXT NOT NULL UNIQUE,
		  body  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tokens (
		  id         SERIAL PRIMARY KEY,
		  token      TEXT NOT NULL UNIQUE,
		  docs_count INT NOT NULL,
		  postings   BYTEA NOT NULL
		)`,
	},

	SelectDocumentID:    `SELECT id FROM documents WHERE title = $1`,
	SelectDocumentTitle: `SELECT title FROM documents WHERE id = $1`,
	InsertDocument:      `INSERT INTO documents (title, body) VALUES ($1, $2)`,
	UpdateDocumentBody:  `UPDATE documents SET body = $1 WHERE id = $2`,
	SelectDocumentCount: `SELECT COUNT(*) FROM documents`,

	InsertToken:   `INSERT INTO tokens (token, docs_count, postings) VALUES ($1, 0, $2) ON CONFLICT (token) DO NOTHING`,
	SelectTokenID: `SELECT id, docs_count FROM tokens WHERE token = $1`,
	SelectToken:   `SELECT token FROM tokens WHERE id = $1`,

	SelectPostings: `SELECT docs_count, postings FROM tokens WHERE id = $1`,
	UpdatePostings: `UPDATE tokens SET docs_count = $1, postings = $2 WHERE id = $3`,

	SelectSetting:  `SELECT value FROM settings WHERE key = $1`,
	ReplaceSetting: `INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
}

func NewDatabase(config database.Config) (database.Database, error) {
	db, err := sql.Open("postgres", postgresBuildDSN(config))
	if err != nil {
		return nil, err
	}
	return database.NewStore(db, config, queries)
}

func postgresBuildDSN(config database.Config) string {
	user := config.User
	password := config.Password
	host := ""
	var options []string

	if config.Socket == "" {
		host = fmt.Sprintf("%s:%d", config.Host, config.Port)
	} else {
		// A socket path would be rejected by the URL parser as a host,
		// so pass it via the host query option instead.
		options = append(options, fmt.Sprintf("host=%s", config.Socket))
	}

	if config.SslMode != "" {
		options = append(options, fmt.Sprintf("sslmode=%s", config.SslMode))
	} else if sslmode, ok := os.LookupEnv("PGSSLMODE"); ok {
		options = append(options, fmt.Sprintf("sslmode=%s", sslmode))
	}

	// QueryEscape instead of PathEscape so that colon can be escaped.
	return fmt.Sprintf("postgres://%s:%s@%s/%s?%s",
		url.QueryEscape(user), url.QueryEscape(password), host,
		config.DbName, strings.Join(options, "&"))
}
