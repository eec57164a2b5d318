// Package database has the storage layer: typed operations over
// documents, tokens, postings blobs and settings.
package database

import (
	"bytes"
	"database/sql"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DbName   string
	User     string
	Password string
	Host     string
	Port     int
	Socket   string

	// MySQLEnableCleartextPlugin is MySQL only; SslMode is the MySQL TLS
	// config name or the PostgreSQL sslmode.
	MySQLEnableCleartextPlugin bool
	SslMode                    string
}

// Database abstracts the SQL backends an index can live in. All
// operations run inside the current transaction once Begin has been
// called.
type Database interface {
	// AddDocument upserts by unique title and returns the document id.
	// An existing title keeps its id and gets its body replaced.
	AddDocument(title, body string) (int, error)
	// GetDocumentID returns 0 when no document has the title.
	GetDocumentID(title string) (int, error)
	GetDocumentTitle(id int) (string, error)
	GetDocumentCount() (int, error)
	// GetTokenID resolves a token string to its id and docs_count.
	// With insert set, an unknown token is first registered with an
	// empty postings blob; without it, an unknown token yields id 0.
	GetTokenID(token string, insert bool) (id, docsCount int, err error)
	GetToken(id int) (string, error)
	// GetPostings returns the stored docs_count and the opaque
	// postings blob; both are zero values when the token has none.
	GetPostings(tokenID int) (docsCount int, blob []byte, err error)
	UpdatePostings(tokenID, docsCount int, blob []byte) error
	GetSetting(key string) (string, error)
	ReplaceSetting(key, value string) error
	Begin() error
	Commit() error
	Rollback() error
	DB() *sql.DB
	Close() error
}

// IndexerConfig carries index-build settings that may come from a YAML
// file; command-line flags override whatever is set here.
type IndexerConfig struct {
	NGram          int
	FlushThreshold int
	Compress       string
	MaxDocuments   int
}

func ParseIndexerConfig(configFile string) IndexerConfig {
	if configFile == "" {
		return IndexerConfig{}
	}

	buf, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatal(err)
	}

	var config struct {
		NGram          int    `yaml:"n_gram"`
		FlushThreshold int    `yaml:"flush_threshold"`
		Compress       string `yaml:"compress"`
		MaxDocuments   int    `yaml:"max_documents"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		log.Fatal(err)
	}
	return IndexerConfig{
		NGram:          config.NGram,
		FlushThreshold: config.FlushThreshold,
		Compress:       config.Compress,
		MaxDocuments:   config.MaxDocuments,
	}
}

// isBusy classifies transient lock contention that is worth retrying,
// as opposed to real statement failures.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout")
}
