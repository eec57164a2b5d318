package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wisteria30/SearchEngine/postings"
)

func TestBufferAdd(t *testing.T) {
	buffer := NewBuffer()
	buffer.Add(7, 1, 0, 0)
	buffer.Add(7, 1, 4, 0)
	buffer.Add(7, 2, 1, 0)
	buffer.Add(9, 2, 3, 0)

	entry := buffer[7]
	require.NotNil(t, entry)
	assert.Equal(t, 7, entry.TokenID)
	assert.Equal(t, 2, entry.DocsCount)
	assert.Equal(t, 3, entry.PositionsCount)
	assert.Equal(t, postings.List{
		{DocumentID: 1, Positions: []int{0, 4}},
		{DocumentID: 2, Positions: []int{1}},
	}, entry.Postings)

	entry = buffer[9]
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.DocsCount)
	assert.Equal(t, postings.List{{DocumentID: 2, Positions: []int{3}}}, entry.Postings)
}

func TestBufferAddQueryMode(t *testing.T) {
	// Query tokens live under document id 0 and carry the docs_count
	// read from the store.
	buffer := NewBuffer()
	buffer.Add(3, 0, 1, 42)
	buffer.Add(3, 0, 5, 42)

	entry := buffer[3]
	require.NotNil(t, entry)
	assert.Equal(t, 42, entry.DocsCount)
	assert.Equal(t, postings.List{{DocumentID: 0, Positions: []int{1, 5}}}, entry.Postings)
}

func TestBufferMergeWithEmpty(t *testing.T) {
	buffer := NewBuffer()
	buffer.Add(1, 1, 0, 0)
	buffer.Add(2, 1, 1, 0)

	buffer.Merge(NewBuffer())
	assert.Len(t, buffer, 2)
	assert.Equal(t, 1, buffer[1].DocsCount)

	empty := NewBuffer()
	empty.Merge(buffer)
	assert.Len(t, empty, 2)
	assert.Len(t, buffer, 0)
}

func TestBufferMerge(t *testing.T) {
	base := NewBuffer()
	base.Add(1, 1, 0, 0)
	base.Add(1, 1, 3, 0)
	base.Add(2, 1, 1, 0)

	other := NewBuffer()
	other.Add(1, 2, 5, 0)
	other.Add(3, 2, 0, 0)

	base.Merge(other)
	assert.Len(t, base, 3)
	assert.Len(t, other, 0)

	entry := base[1]
	assert.Equal(t, 2, entry.DocsCount)
	assert.Equal(t, 3, entry.PositionsCount)
	assert.Equal(t, postings.List{
		{DocumentID: 1, Positions: []int{0, 3}},
		{DocumentID: 2, Positions: []int{5}},
	}, entry.Postings)

	assert.Equal(t, 1, base[2].DocsCount)
	assert.Equal(t, 1, base[3].DocsCount)
}

func TestBufferFlush(t *testing.T) {
	db := newFakeDB()
	db.AddDocument("a", "x")
	db.AddDocument("b", "y")

	buffer := NewBuffer()
	buffer.Add(1, 1, 0, 0)
	buffer.Add(1, 2, 4, 0)
	require.NoError(t, buffer.Flush(db, postings.Golomb))
	assert.Len(t, buffer, 0)

	list, docsCount, err := FetchPostings(db, postings.Golomb, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, docsCount)
	assert.Equal(t, postings.List{
		{DocumentID: 1, Positions: []int{0}},
		{DocumentID: 2, Positions: []int{4}},
	}, list)
}

func TestBufferFlushMergesPersisted(t *testing.T) {
	db := newFakeDB()
	db.AddDocument("a", "x")
	db.AddDocument("b", "y")
	db.AddDocument("c", "z")

	buffer := NewBuffer()
	buffer.Add(1, 1, 2, 0)
	require.NoError(t, buffer.Flush(db, postings.None))

	buffer.Add(1, 3, 0, 0)
	require.NoError(t, buffer.Flush(db, postings.None))

	list, docsCount, err := FetchPostings(db, postings.None, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, docsCount)
	assert.Equal(t, postings.List{
		{DocumentID: 1, Positions: []int{2}},
		{DocumentID: 3, Positions: []int{0}},
	}, list)
}

func TestBufferFlushSurfacesStorageError(t *testing.T) {
	db := newFakeDB()
	db.AddDocument("a", "x")
	db.failPostings[1] = true

	buffer := NewBuffer()
	buffer.Add(1, 1, 0, 0)
	assert.Error(t, buffer.Flush(db, postings.None))
}

func TestFetchPostingsValidatesDocsCount(t *testing.T) {
	db := newFakeDB()
	blob, err := postings.Encode(postings.None, 1, postings.List{
		{DocumentID: 1, Positions: []int{0}},
	})
	require.NoError(t, err)
	require.NoError(t, db.UpdatePostings(5, 3, blob))

	_, _, err = FetchPostings(db, postings.None, 5)
	assert.ErrorIs(t, err, postings.ErrCorrupt)
}

func TestFetchPostingsEmpty(t *testing.T) {
	db := newFakeDB()
	list, docsCount, err := FetchPostings(db, postings.Golomb, 123)
	require.NoError(t, err)
	assert.Nil(t, list)
	assert.Equal(t, 0, docsCount)
}
