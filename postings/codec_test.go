package postings

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (b *BitBuffer) bitLen() int {
	return len(b.buf)*8 + int(b.nbits)
}

func TestGolombUnitRoundTrip(t *testing.T) {
	for m := 1; m <= 17; m++ {
		b, tt := golombParams(m)
		for n := 0; n <= 200; n++ {
			buf := NewBitBuffer()
			golombEncode(m, b, tt, n, buf)

			expectedBits := n/m + 1
			if m > 1 {
				if n%m < tt {
					expectedBits += b - 1
				} else {
					expectedBits += b
				}
			}
			require.Equal(t, expectedBits, buf.bitLen(), "bit length of n=%d m=%d", n, m)

			r := newBitReader(buf.Bytes())
			decoded, err := golombDecode(m, b, tt, r)
			require.NoError(t, err)
			require.Equal(t, n, decoded, "round trip of n=%d m=%d", n, m)
		}
	}
}

func TestGolombParams(t *testing.T) {
	tests := []struct {
		m, b, t int
	}{
		{m: 1, b: 0, t: 0},
		{m: 2, b: 1, t: 0},
		{m: 3, b: 2, t: 1},
		{m: 4, b: 2, t: 0},
		{m: 5, b: 3, t: 3},
		{m: 8, b: 3, t: 0},
		{m: 9, b: 4, t: 7},
	}
	for _, tt := range tests {
		b, tr := golombParams(tt.m)
		assert.Equal(t, tt.b, b, "b for m=%d", tt.m)
		assert.Equal(t, tt.t, tr, "t for m=%d", tt.m)
	}
}

func TestEncodeNoneLayout(t *testing.T) {
	list := List{
		{DocumentID: 1, Positions: []int{0, 3}},
		{DocumentID: 4, Positions: []int{1}},
	}
	blob, err := Encode(None, 4, list)
	require.NoError(t, err)
	// Little-endian int32 framing: id, count, positions verbatim.
	assert.Equal(t, []byte{
		1, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0,
		4, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0,
	}, blob)
}

func randomList(r *rand.Rand, postingsCount int) (List, int) {
	list := make(List, 0, postingsCount)
	documentID := 0
	for i := 0; i < postingsCount; i++ {
		documentID += 1 + r.Intn(3)
		position := -1
		positions := make([]int, 0, 5)
		for j := 0; j < 1+r.Intn(5); j++ {
			position += 1 + r.Intn(50)
			positions = append(positions, position)
		}
		list = append(list, Posting{DocumentID: documentID, Positions: positions})
	}
	return list, documentID
}

func TestCodecRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, method := range []Method{None, Golomb} {
		for _, postingsCount := range []int{1, 2, 17, 10000} {
			list, totalDocs := randomList(r, postingsCount)
			blob, err := Encode(method, totalDocs, list)
			require.NoError(t, err)
			decoded, err := Decode(method, blob)
			require.NoError(t, err)
			require.Equal(t, list, decoded, "method %s, %d postings", method, postingsCount)
		}
	}
}

func TestCodecGolombSmallerThanNone(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	list, totalDocs := randomList(r, 1000)
	plain, err := Encode(None, totalDocs, list)
	require.NoError(t, err)
	compressed, err := Encode(Golomb, totalDocs, list)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(plain))
}

func TestDecodeEmpty(t *testing.T) {
	for _, method := range []Method{None, Golomb} {
		list, err := Decode(method, nil)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		method Method
		blob   []byte
	}{
		{
			name:   "none truncated header",
			method: None,
			blob:   []byte{1, 0, 0},
		},
		{
			name:   "none truncated positions",
			method: None,
			blob:   []byte{1, 0, 0, 0, 2, 0, 0, 0, 5, 0, 0, 0},
		},
		{
			name:   "golomb truncated header",
			method: Golomb,
			blob:   []byte{5, 0, 0, 0},
		},
		{
			name:   "golomb invalid m",
			method: Golomb,
			blob:   []byte{1, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "golomb truncated unary code",
			method: Golomb,
			blob:   []byte{1, 0, 0, 0, 1, 0, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.method, tt.blob)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestEncodeGolombRejectsInvalidParameter(t *testing.T) {
	// More postings than documents in the corpus cannot happen in a
	// consistent index and would make m zero.
	list := List{
		{DocumentID: 1, Positions: []int{0}},
		{DocumentID: 2, Positions: []int{0}},
	}
	_, err := Encode(Golomb, 1, list)
	assert.Error(t, err)
}
