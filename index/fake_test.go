package index

import (
	"database/sql"
	"fmt"
)

// fakeDB is an in-memory Database for unit tests.
type fakeDB struct {
	titles     map[string]int
	bodies     map[int]string
	tokenIDs   map[string]int
	tokenNames map[int]string
	docsCounts map[int]int
	blobs      map[int][]byte
	settings   map[string]string

	failPostings map[int]bool // tokens whose GetPostings errors
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		titles:       map[string]int{},
		bodies:       map[int]string{},
		tokenIDs:     map[string]int{},
		tokenNames:   map[int]string{},
		docsCounts:   map[int]int{},
		blobs:        map[int][]byte{},
		settings:     map[string]string{},
		failPostings: map[int]bool{},
	}
}

func (f *fakeDB) AddDocument(title, body string) (int, error) {
	id, ok := f.titles[title]
	if !ok {
		id = len(f.titles) + 1
		f.titles[title] = id
	}
	f.bodies[id] = body
	return id, nil
}

func (f *fakeDB) GetDocumentID(title string) (int, error) {
	return f.titles[title], nil
}

func (f *fakeDB) GetDocumentTitle(id int) (string, error) {
	for title, docID := range f.titles {
		if docID == id {
			return title, nil
		}
	}
	return "", nil
}

func (f *fakeDB) GetDocumentCount() (int, error) {
	return len(f.titles), nil
}

func (f *fakeDB) GetTokenID(token string, insert bool) (int, int, error) {
	id, ok := f.tokenIDs[token]
	if !ok {
		if !insert {
			return 0, 0, nil
		}
		id = len(f.tokenIDs) + 1
		f.tokenIDs[token] = id
		f.tokenNames[id] = token
	}
	return id, f.docsCounts[id], nil
}

func (f *fakeDB) GetToken(id int) (string, error) {
	return f.tokenNames[id], nil
}

func (f *fakeDB) GetPostings(tokenID int) (int, []byte, error) {
	if f.failPostings[tokenID] {
		return 0, nil, fmt.Errorf("fake storage failure")
	}
	return f.docsCounts[tokenID], f.blobs[tokenID], nil
}

func (f *fakeDB) UpdatePostings(tokenID, docsCount int, blob []byte) error {
	f.docsCounts[tokenID] = docsCount
	f.blobs[tokenID] = blob
	return nil
}

func (f *fakeDB) GetSetting(key string) (string, error) {
	return f.settings[key], nil
}

func (f *fakeDB) ReplaceSetting(key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeDB) Begin() error { return nil }

func (f *fakeDB) Commit() error { return nil }

func (f *fakeDB) Rollback() error { return nil }

func (f *fakeDB) DB() *sql.DB { return nil }

func (f *fakeDB) Close() error { return nil }
