package png

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/pngctl/internal/png/chunk"
)

// Signature is the fixed 8-byte PNG file header.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// Limits constrains how much untrusted input a parse may consume.
type Limits struct {
	MaxInputBytes int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxInputBytes: 64 * 1024 * 1024,
	}
}

// Png is a signature followed by an ordered list of chunks. The chunk list is
// the only state; serialized bytes are recomputed on every call.
type Png struct {
	chunks []chunk.Chunk
}

// New builds a container from an initial chunk list, preserving its order.
func New(chunks []chunk.Chunk) *Png {
	p := &Png{chunks: make([]chunk.Chunk, 0, len(chunks))}
	p.chunks = append(p.chunks, chunks...)
	return p
}

// Parse decodes a complete PNG byte stream. Any malformed chunk fails the
// whole parse.
func Parse(b []byte) (*Png, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature[:]) {
		return nil, ErrSignature
	}
	p := &Png{chunks: make([]chunk.Chunk, 0)}
	i := len(Signature)
	for i < len(b) {
		c, n, err := chunk.Decode(b[i:])
		if err != nil {
			return nil, fmt.Errorf("png: chunk %d at offset %d: %w", len(p.chunks), i, err)
		}
		p.chunks = append(p.chunks, c)
		i += n
	}
	return p, nil
}

// Read consumes r to EOF and parses the result, refusing input beyond
// limits.MaxInputBytes.
func Read(r io.Reader, limits Limits) (*Png, error) {
	b, err := ReadAll(r, limits)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// ReadAll reads r to EOF under limits without parsing.
func ReadAll(r io.Reader, limits Limits) ([]byte, error) {
	if limits.MaxInputBytes <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, limits.MaxInputBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limits.MaxInputBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, limits.MaxInputBytes)
	}
	return b, nil
}

// Clone returns an independent copy of the container.
func (p *Png) Clone() *Png {
	return New(p.chunks)
}

// AppendChunk adds c after the last chunk. The type is not re-validated.
func (p *Png) AppendChunk(c chunk.Chunk) {
	p.chunks = append(p.chunks, c)
}

// ChunkByType returns the first chunk whose type text equals code.
func (p *Png) ChunkByType(code string) (chunk.Chunk, bool) {
	i := p.indexOf(code)
	if i < 0 {
		return chunk.Chunk{}, false
	}
	return p.chunks[i], true
}

// RemoveChunk deletes the first chunk whose type text equals code and
// returns it. On a miss the container is left untouched.
func (p *Png) RemoveChunk(code string) (chunk.Chunk, error) {
	i := p.indexOf(code)
	if i < 0 {
		return chunk.Chunk{}, fmt.Errorf("%w: %s", ErrChunkNotFound, code)
	}
	removed := p.chunks[i]
	next := make([]chunk.Chunk, 0, len(p.chunks)-1)
	next = append(next, p.chunks[:i]...)
	next = append(next, p.chunks[i+1:]...)
	p.chunks = next
	return removed, nil
}

// Chunks returns the chunk list in order. The slice is a copy.
func (p *Png) Chunks() []chunk.Chunk {
	out := make([]chunk.Chunk, len(p.chunks))
	copy(out, p.chunks)
	return out
}

func (p *Png) Len() int {
	return len(p.chunks)
}

// Size is the serialized byte length.
func (p *Png) Size() int {
	n := len(Signature)
	for _, c := range p.chunks {
		n += c.Size()
	}
	return n
}

// Bytes serializes the signature and every chunk in order.
func (p *Png) Bytes() []byte {
	out := make([]byte, 0, p.Size())
	out = append(out, Signature[:]...)
	for _, c := range p.chunks {
		out = c.AppendTo(out)
	}
	return out
}

// WriteTo writes the serialized container to w.
func (p *Png) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// Equal reports whether both containers hold equal chunks in the same order.
func (p *Png) Equal(o *Png) bool {
	if len(p.chunks) != len(o.chunks) {
		return false
	}
	for i := range p.chunks {
		if !p.chunks[i].Equal(o.chunks[i]) {
			return false
		}
	}
	return true
}

// IsStructural reports whether err signals a corrupt byte stream rather than
// a lookup miss or a text decoding failure.
func IsStructural(err error) bool {
	return errors.Is(err, ErrSignature) ||
		errors.Is(err, chunk.ErrTruncated) ||
		errors.Is(err, chunk.ErrChecksumMismatch) ||
		errors.Is(err, chunk.ErrPayloadTooLarge) ||
		errors.Is(err, chunk.ErrReservedBit) ||
		errors.Is(err, chunk.ErrTypeNotASCII) ||
		errors.Is(err, chunk.ErrTypeNotAlphabetic)
}

func (p *Png) indexOf(code string) int {
	for i, c := range p.chunks {
		if c.Type().String() == code {
			return i
		}
	}
	return -1
}
