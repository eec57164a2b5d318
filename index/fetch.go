package index

import (
	"fmt"

	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/postings"
)

// FetchPostings loads and decodes the persisted postings list of a
// token. An absent or empty blob yields a nil list. A decoded list
// whose length disagrees with the stored docs_count is a corruption
// error.
func FetchPostings(db database.Database, method postings.Method, tokenID int) (postings.List, int, error) {
	docsCount, blob, err := db.GetPostings(tokenID)
	if err != nil {
		return nil, 0, err
	}
	if len(blob) == 0 {
		return nil, 0, nil
	}
	list, err := postings.Decode(method, blob)
	if err != nil {
		return nil, 0, fmt.Errorf("token %d: %w", tokenID, err)
	}
	if docsCount != len(list) {
		return nil, 0, fmt.Errorf("token %d: %w: stored docs_count %d, decoded %d",
			tokenID, postings.ErrCorrupt, docsCount, len(list))
	}
	return list, len(list), nil
}
