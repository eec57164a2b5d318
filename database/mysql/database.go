package mysql

import (
	"database/sql"
	"fmt"

	driver "github.com/go-sql-driver/mysql"

	"github.com/Wisteria30/SearchEngine/database"
)

var queries = database.Queries{
	CreateDDLs: []string{
		"CREATE TABLE IF NOT EXISTS settings (\n" +
			"  `key` VARCHAR(255) PRIMARY KEY,\n" +
			"  value TEXT\n" +
			")",
		`CREATE TABLE IF NOT EXISTS documents (
		  id    INTEGER PRIMARY KEY AUTO_INCREMENT,
		  title VARCHAR(255) NOT NULL UNIQUE,
		  body  LONGTEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tokens (
		  id         INTEGER PRIMARY KEY AUTO_INCREMENT,
		  token      VARCHAR(255) NOT NULL UNIQUE,
		  docs_count INT NOT NULL,
		  postings   LONGBLOB NOT NULL
		)`,
	},

	SelectDocumentID:    `SELECT id FROM documents WHERE title = ?`,
	SelectDocumentTitle: `SELECT title FROM documents WHERE id = ?`,
	InsertDocument:      `INSERT INTO documents (title, body) VALUES (?, ?)`,
	UpdateDocumentBody:  `UPDATE documents SET body = ? WHERE id = ?`,
	SelectDocumentCount: `SELECT COUNT(*) FROM documents`,

	InsertToken:   `INSERT IGNORE INTO tokens (token, docs_count, postings) VALUES (?, 0, ?)`,
	SelectTokenID: `SELECT id, docs_count FROM tokens WHERE token = ?`,
	SelectToken:   `SELECT token FROM tokens WHERE id = ?`,

	SelectPostings: `SELECT docs_count, postings FROM tokens WHERE id = ?`,
	UpdatePostings: `UPDATE tokens SET docs_count = ?, postings = ? WHERE id = ?`,

	SelectSetting:  "SELECT value FROM settings WHERE `key` = ?",
	ReplaceSetting: "REPLACE INTO settings (`key`, value) VALUES (?, ?)",
}

func NewDatabase(config database.Config) (database.Database, error) {
	db, err := sql.Open("mysql", mysqlBuildDSN(config))
	if err != nil {
		return nil, err
	}
	return database.NewStore(db, config, queries)
}

func mysqlBuildDSN(config database.Config) string {
	c := driver.NewConfig()
	c.User = config.User
	c.Passwd = config.Password
	c.DBName = config.DbName
	c.AllowCleartextPasswords = config.MySQLEnableCleartextPlugin
	c.TLSConfig = config.SslMode
	if config.Socket == "" {
		c.Net = "tcp"
		c.Addr = fmt.Sprintf("%s:%d", config.Host, config.Port)
	} else {
		c.Net = "unix"
		c.Addr = config.Socket
	}
	return c.FormatDSN()
}
