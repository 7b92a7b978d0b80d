package png

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/pngctl/internal/png/chunk"
)

func testChunk(code, data string) chunk.Chunk {
	return chunk.New(chunk.MustParseType(code), []byte(data))
}

func testChunks() []chunk.Chunk {
	return []chunk.Chunk{
		testChunk("FrSt", "I am the first chunk"),
		testChunk("miDl", "I am another chunk"),
		testChunk("LASt", "I am the last chunk"),
	}
}

func testBytes(chunks []chunk.Chunk) []byte {
	out := append([]byte{}, Signature[:]...)
	for _, c := range chunks {
		out = append(out, c.Bytes()...)
	}
	return out
}

func TestParseValid(t *testing.T) {
	p, err := Parse(testBytes(testChunks()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 chunks, got %d", p.Len())
	}
	for i, c := range p.Chunks() {
		if !c.Equal(testChunks()[i]) {
			t.Fatalf("chunk %d mismatch: %s", i, c.Type())
		}
	}
}

func TestParseSignatureOnly(t *testing.T) {
	p, err := Parse(Signature[:])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Len() != 0 {
		t.Fatalf("expected no chunks, got %d", p.Len())
	}
}

func TestParseBadSignature(t *testing.T) {
	raw := testBytes(testChunks())
	raw[0] = 0x88
	_, err := Parse(raw)
	if !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestParseShortSignature(t *testing.T) {
	_, err := Parse(Signature[:5])
	if !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestParseCorruptTrailingChunkFailsWhole(t *testing.T) {
	raw := testBytes(testChunks())
	raw[len(raw)-1] ^= 0x01
	p, err := Parse(raw)
	if !errors.Is(err, chunk.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if p != nil {
		t.Fatalf("expected no container on failure")
	}
	if !IsStructural(err) {
		t.Fatalf("expected structural error")
	}
}

func TestParseTruncatedTrailingChunk(t *testing.T) {
	raw := testBytes(testChunks())
	_, err := Parse(raw[:len(raw)-2])
	if !errors.Is(err, chunk.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	raw := testBytes(testChunks())
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(p.Bytes(), raw) {
		t.Fatalf("serialized bytes differ from input")
	}
	again, err := Parse(p.Bytes())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !again.Equal(p) {
		t.Fatalf("reparsed container differs")
	}
}

func TestAppendChunk(t *testing.T) {
	p := New(testChunks())
	p.AppendChunk(testChunk("TeSt", "Message"))
	if p.Len() != 4 {
		t.Fatalf("expected 4 chunks, got %d", p.Len())
	}
	c, ok := p.ChunkByType("TeSt")
	if !ok {
		t.Fatalf("appended chunk not found")
	}
	if text, _ := c.Text(); text != "Message" {
		t.Fatalf("unexpected text: %q", text)
	}
	last := p.Chunks()[p.Len()-1]
	if last.Type().String() != "TeSt" {
		t.Fatalf("expected appended chunk last, got %s", last.Type())
	}
}

func TestChunkByTypeFirstMatchWins(t *testing.T) {
	p := New(testChunks())
	p.AppendChunk(testChunk("ruSt", "x"))
	p.AppendChunk(testChunk("ruSt", "y"))
	c, ok := p.ChunkByType("ruSt")
	if !ok {
		t.Fatalf("chunk not found")
	}
	if text, _ := c.Text(); text != "x" {
		t.Fatalf("expected first match, got %q", text)
	}
	if _, ok := p.ChunkByType("nOpe"); ok {
		t.Fatalf("unexpected match")
	}
}

func TestRemoveChunk(t *testing.T) {
	p := New(testChunks())
	p.AppendChunk(testChunk("TeSt", "Message"))
	removed, err := p.RemoveChunk("TeSt")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Type().String() != "TeSt" {
		t.Fatalf("unexpected removed chunk: %s", removed.Type())
	}
	if _, ok := p.ChunkByType("TeSt"); ok {
		t.Fatalf("chunk still present")
	}
	if !bytes.Equal(p.Bytes(), testBytes(testChunks())) {
		t.Fatalf("remaining chunks changed")
	}
}

func TestRemoveChunkRemovesFirstOnly(t *testing.T) {
	p := New(nil)
	p.AppendChunk(testChunk("ruSt", "a"))
	p.AppendChunk(testChunk("ruSt", "b"))
	if _, err := p.RemoveChunk("ruSt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	c, ok := p.ChunkByType("ruSt")
	if !ok {
		t.Fatalf("second chunk missing")
	}
	if text, _ := c.Text(); text != "b" {
		t.Fatalf("expected second chunk, got %q", text)
	}
}

func TestRemoveChunkMissLeavesContainer(t *testing.T) {
	p := New(testChunks())
	before := p.Bytes()
	_, err := p.RemoveChunk("nOpe")
	if !errors.Is(err, ErrChunkNotFound) {
		t.Fatalf("expected ErrChunkNotFound, got %v", err)
	}
	if IsStructural(err) {
		t.Fatalf("lookup miss reported as structural")
	}
	if !bytes.Equal(p.Bytes(), before) {
		t.Fatalf("container changed on failed removal")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := New(testChunks())
	c := p.Clone()
	c.AppendChunk(testChunk("ruSt", "x"))
	if p.Len() != 3 || c.Len() != 4 {
		t.Fatalf("clone shares state: orig=%d clone=%d", p.Len(), c.Len())
	}
}

func TestEncodeParseLookup(t *testing.T) {
	p := New(nil)
	p.AppendChunk(testChunk("ruSt", "hello"))
	again, err := Parse(p.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, ok := again.ChunkByType("ruSt")
	if !ok {
		t.Fatalf("chunk not found")
	}
	if text, _ := c.Text(); text != "hello" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestReadLimits(t *testing.T) {
	raw := testBytes(testChunks())
	if _, err := Read(bytes.NewReader(raw), Limits{MaxInputBytes: int64(len(raw))}); err != nil {
		t.Fatalf("read at limit: %v", err)
	}
	_, err := Read(bytes.NewReader(raw), Limits{MaxInputBytes: int64(len(raw) - 1)})
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("expected ErrInputTooLarge, got %v", err)
	}
}

func TestWriteTo(t *testing.T) {
	p := New(testChunks())
	var sb strings.Builder
	n, err := p.WriteTo(&sb)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if int(n) != p.Size() || sb.String() != string(p.Bytes()) {
		t.Fatalf("unexpected write: n=%d size=%d", n, p.Size())
	}
}
