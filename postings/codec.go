package postings

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Method selects the on-disk representation of a postings list.
type Method int

const (
	// None stores int32 document ids, counts and positions verbatim.
	None Method = iota
	// Golomb gap-codes document ids and positions with Golomb-Rice.
	Golomb
)

func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case Golomb:
		return "golomb"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ErrCorrupt reports an encoded postings list that cannot be decoded:
// a truncated blob, an invalid unary code, or an invalid parameter.
var ErrCorrupt = errors.New("corrupt postings list")

// All int32 framing is little-endian, regardless of host.

// Encode serializes a postings list. totalDocs is the number of
// documents in the corpus and parameterizes the Golomb code; the
// identity codec ignores it.
func Encode(method Method, totalDocs int, list List) ([]byte, error) {
	switch method {
	case None:
		return encodeNone(list), nil
	case Golomb:
		return encodeGolomb(totalDocs, list)
	}
	return nil, fmt.Errorf("unknown compress method %d", int(method))
}

// Decode reverses Encode.
func Decode(method Method, data []byte) (List, error) {
	switch method {
	case None:
		return decodeNone(data)
	case Golomb:
		return decodeGolomb(data)
	}
	return nil, fmt.Errorf("unknown compress method %d", int(method))
}

func encodeNone(list List) []byte {
	size := 0
	for _, p := range list {
		size += 4 * (2 + len(p.Positions))
	}
	buf := make([]byte, 0, size)
	for _, p := range list {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.DocumentID))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Positions)))
		for _, pos := range p.Positions {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(pos))
		}
	}
	return buf
}

func decodeNone(data []byte) (List, error) {
	var list List
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, fmt.Errorf("%w: truncated posting header", ErrCorrupt)
		}
		documentID := int(int32(binary.LittleEndian.Uint32(data)))
		positionsCount := int(int32(binary.LittleEndian.Uint32(data[4:])))
		data = data[8:]
		if positionsCount < 0 || len(data) < 4*positionsCount {
			return nil, fmt.Errorf("%w: truncated positions", ErrCorrupt)
		}
		positions := make([]int, positionsCount)
		for i := range positions {
			positions[i] = int(int32(binary.LittleEndian.Uint32(data[4*i:])))
		}
		data = data[4*positionsCount:]
		list = append(list, Posting{DocumentID: documentID, Positions: positions})
	}
	return list, nil
}

// golombParams derives the b and t parameters from m: b = ceil(log2(m)),
// t = 2^b - m. m must be at least 1.
func golombParams(m int) (b, t int) {
	l := 1
	for b = 0; m > l; b++ {
		l <<= 1
	}
	return b, l - m
}

// golombEncode writes one value n >= 0: floor(n/m) one-bits and a zero
// bit, then the remainder in truncated binary.
func golombEncode(m, b, t, n int, buf *BitBuffer) {
	for i := n / m; i > 0; i-- {
		buf.AppendBit(true)
	}
	buf.AppendBit(false)
	if m > 1 {
		r := n % m
		if r < t {
			for i := 1 << (b - 2); i > 0; i >>= 1 {
				buf.AppendBit(r&i != 0)
			}
		} else {
			r += t
			for i := 1 << (b - 1); i > 0; i >>= 1 {
				buf.AppendBit(r&i != 0)
			}
		}
	}
}

func encodeGolomb(totalDocs int, list List) ([]byte, error) {
	buf := NewBitBuffer()
	header := binary.LittleEndian.AppendUint32(nil, uint32(len(list)))
	buf.Append(header)
	if len(list) > 0 {
		m := totalDocs / len(list)
		if m < 1 {
			return nil, fmt.Errorf("invalid golomb parameter m=%d (%d docs, %d postings)",
				m, totalDocs, len(list))
		}
		buf.Append(binary.LittleEndian.AppendUint32(nil, uint32(m)))
		b, t := golombParams(m)
		preDocumentID := 0
		for _, p := range list {
			golombEncode(m, b, t, p.DocumentID-preDocumentID-1, buf)
			preDocumentID = p.DocumentID
		}
		buf.Align()
	}
	for _, p := range list {
		buf.Append(binary.LittleEndian.AppendUint32(nil, uint32(len(p.Positions))))
		if len(p.Positions) > 0 {
			mp := (p.Positions[len(p.Positions)-1] + 1) / len(p.Positions)
			if mp < 1 {
				return nil, fmt.Errorf("invalid golomb parameter m=%d for positions", mp)
			}
			buf.Append(binary.LittleEndian.AppendUint32(nil, uint32(mp)))
			bp, tp := golombParams(mp)
			prePosition := -1
			for _, pos := range p.Positions {
				golombEncode(mp, bp, tp, pos-prePosition-1, buf)
				prePosition = pos
			}
			buf.Align()
		}
	}
	return buf.Bytes(), nil
}

// bitReader reads a Golomb blob: byte-aligned int32 headers interleaved
// with MSB-first bit streams.
type bitReader struct {
	data []byte
	pos  int
	bit  byte
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data, bit: 0x80}
}

func (r *bitReader) readBit() (int, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: invalid golomb code", ErrCorrupt)
	}
	bit := 0
	if r.data[r.pos]&r.bit != 0 {
		bit = 1
	}
	r.bit >>= 1
	if r.bit == 0 {
		r.bit = 0x80
		r.pos++
	}
	return bit, nil
}

// align consumes the rest of a partial byte so the next read starts on
// a byte boundary.
func (r *bitReader) align() {
	if r.bit != 0x80 {
		r.bit = 0x80
		r.pos++
	}
}

func (r *bitReader) readInt32() (int, error) {
	r.align()
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	v := int(int32(binary.LittleEndian.Uint32(r.data[r.pos:])))
	r.pos += 4
	return v, nil
}

func golombDecode(m, b, t int, r *bitReader) (int, error) {
	n := 0
	for {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		n += m
	}
	if m > 1 {
		rem := 0
		for i := 0; i < b-1; i++ {
			bit, err := r.readBit()
			if err != nil {
				return 0, err
			}
			rem = rem<<1 | bit
		}
		if rem >= t {
			bit, err := r.readBit()
			if err != nil {
				return 0, err
			}
			rem = rem<<1 | bit
			rem -= t
		}
		n += rem
	}
	return n, nil
}

func decodeGolomb(data []byte) (List, error) {
	if len(data) == 0 {
		return nil, nil
	}
	r := newBitReader(data)
	docsCount, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if docsCount < 0 {
		return nil, fmt.Errorf("%w: negative docs count %d", ErrCorrupt, docsCount)
	}
	if docsCount == 0 {
		return nil, nil
	}
	m, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if m < 1 {
		return nil, fmt.Errorf("%w: invalid golomb parameter m=%d", ErrCorrupt, m)
	}
	list := make(List, 0, docsCount)
	b, t := golombParams(m)
	preDocumentID := 0
	for i := 0; i < docsCount; i++ {
		gap, err := golombDecode(m, b, t, r)
		if err != nil {
			return nil, err
		}
		documentID := preDocumentID + gap + 1
		list = append(list, Posting{DocumentID: documentID})
		preDocumentID = documentID
	}
	for i := range list {
		positionsCount, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		if positionsCount < 0 {
			return nil, fmt.Errorf("%w: negative positions count %d", ErrCorrupt, positionsCount)
		}
		mp, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		if mp < 1 {
			return nil, fmt.Errorf("%w: invalid golomb parameter m=%d", ErrCorrupt, mp)
		}
		bp, tp := golombParams(mp)
		position := -1
		positions := make([]int, 0, positionsCount)
		for j := 0; j < positionsCount; j++ {
			gap, err := golombDecode(mp, bp, tp, r)
			if err != nil {
				return nil, err
			}
			position += gap + 1
			positions = append(positions, position)
		}
		list[i].Positions = positions
		r.align()
	}
	return list, nil
}
