package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode/utf8"
)

const (
	LengthLen   = 4
	ChecksumLen = 4
	// Overhead is the framing around a payload: length, type and checksum.
	Overhead = LengthLen + TypeLen + ChecksumLen
	// MaxDataLen is the largest payload a length field may declare.
	MaxDataLen = 1<<31 - 1
)

// maxDataLen is the payload cap shared by Decode and Length.
var maxDataLen = MaxDataLen

// Chunk is one length-prefixed, checksummed PNG record. The checksum is
// always derived from the type and payload, never stored.
type Chunk struct {
	typ  Type
	data []byte
}

// New builds a chunk owning a copy of data.
func New(t Type, data []byte) Chunk {
	return Chunk{typ: t, data: bytes.Clone(data)}
}

func (c Chunk) Type() Type {
	return c.typ
}

// Data returns a copy of the payload.
func (c Chunk) Data() []byte {
	return bytes.Clone(c.data)
}

// Length is the payload byte count written to the length field. Decode never
// yields a chunk over MaxDataLen, so only a caller building an oversized chunk
// with New can trip the panic.
func (c Chunk) Length() uint32 {
	if len(c.data) > maxDataLen {
		panic(fmt.Sprintf("chunk: payload of %d bytes exceeds %d", len(c.data), maxDataLen))
	}
	return uint32(len(c.data))
}

// Size is the number of bytes the chunk occupies on the wire.
func (c Chunk) Size() int {
	return Overhead + len(c.data)
}

// CRC is the CRC-32/ISO-HDLC checksum over the type bytes and the payload.
func (c Chunk) CRC() uint32 {
	h := crc32.NewIEEE()
	code := c.typ.Bytes()
	h.Write(code[:])
	h.Write(c.data)
	return h.Sum32()
}

// Bytes serializes the chunk: length, type, payload, checksum.
func (c Chunk) Bytes() []byte {
	return c.AppendTo(make([]byte, 0, c.Size()))
}

// AppendTo appends the serialized chunk to dst.
func (c Chunk) AppendTo(dst []byte) []byte {
	code := c.typ.Bytes()
	dst = binary.BigEndian.AppendUint32(dst, c.Length())
	dst = append(dst, code[:]...)
	dst = append(dst, c.data...)
	return binary.BigEndian.AppendUint32(dst, c.CRC())
}

// Text interprets the payload as UTF-8.
func (c Chunk) Text() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: %s chunk", ErrInvalidUTF8, c.typ)
	}
	return string(c.data), nil
}

// String renders the payload as text, replacing invalid UTF-8 sequences.
func (c Chunk) String() string {
	return strings.ToValidUTF8(string(c.data), string(utf8.RuneError))
}

// Equal reports whether both chunks carry the same type and payload.
func (c Chunk) Equal(o Chunk) bool {
	return c.typ == o.typ && bytes.Equal(c.data, o.data)
}

// Parse decodes the chunk at the start of b. Trailing bytes are ignored.
func Parse(b []byte) (Chunk, error) {
	c, _, err := Decode(b)
	return c, err
}

// Decode decodes the chunk at the start of b and returns the number of bytes
// consumed. The type must carry a set reserved bit, the payload must not
// exceed MaxDataLen and the stored checksum must match the recomputed one.
// A length beyond the remaining bytes is reported as truncation first.
func Decode(b []byte) (Chunk, int, error) {
	if len(b) < LengthLen {
		return Chunk{}, 0, fmt.Errorf("%w: length field needs %d bytes, have %d", ErrTruncated, LengthLen, len(b))
	}
	length := binary.BigEndian.Uint32(b[:LengthLen])
	i := LengthLen

	if len(b)-i < TypeLen {
		return Chunk{}, 0, fmt.Errorf("%w: type field needs %d bytes, have %d", ErrTruncated, TypeLen, len(b)-i)
	}
	var code [TypeLen]byte
	copy(code[:], b[i:i+TypeLen])
	i += TypeLen
	typ, err := TypeFromBytes(code)
	if err != nil {
		return Chunk{}, 0, err
	}
	if !typ.IsValid() {
		return Chunk{}, 0, fmt.Errorf("%w: %s", ErrReservedBit, typ)
	}

	if uint64(len(b)-i) < uint64(length) {
		return Chunk{}, 0, fmt.Errorf("%w: %s payload declares %d bytes, have %d", ErrTruncated, typ, length, len(b)-i)
	}
	if uint64(length) > uint64(maxDataLen) {
		return Chunk{}, 0, fmt.Errorf("%w: %s declares %d bytes, max %d", ErrPayloadTooLarge, typ, length, maxDataLen)
	}
	data := bytes.Clone(b[i : i+int(length)])
	i += int(length)

	if len(b)-i < ChecksumLen {
		return Chunk{}, 0, fmt.Errorf("%w: %s checksum needs %d bytes, have %d", ErrTruncated, typ, ChecksumLen, len(b)-i)
	}
	stored := binary.BigEndian.Uint32(b[i : i+ChecksumLen])
	i += ChecksumLen

	c := Chunk{typ: typ, data: data}
	if got := c.CRC(); got != stored {
		return Chunk{}, 0, fmt.Errorf("%w: %s stored 0x%08x computed 0x%08x", ErrChecksumMismatch, typ, stored, got)
	}
	return c, i, nil
}
