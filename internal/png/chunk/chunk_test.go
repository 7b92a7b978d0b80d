package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

const (
	testMessage = "This is where your secret message will be!"
	testCRC     = uint32(2882656334)
)

func testChunkBytes(length uint32, code string, data []byte, crc uint32) []byte {
	out := binary.BigEndian.AppendUint32(nil, length)
	out = append(out, code...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc)
}

func TestNewChunk(t *testing.T) {
	c := New(MustParseType("RuSt"), []byte(testMessage))
	if c.Length() != uint32(len(testMessage)) {
		t.Fatalf("unexpected length: %d", c.Length())
	}
	if c.Length() != 42 {
		t.Fatalf("unexpected literal length: %d", c.Length())
	}
	if c.CRC() != testCRC {
		t.Fatalf("unexpected crc: %d", c.CRC())
	}
}

func TestNewChunkOwnsPayload(t *testing.T) {
	data := []byte("hello")
	c := New(MustParseType("ruSt"), data)
	data[0] = 'j'
	if got, _ := c.Text(); got != "hello" {
		t.Fatalf("payload aliased caller buffer: %q", got)
	}
	out := c.Data()
	out[0] = 'y'
	if got, _ := c.Text(); got != "hello" {
		t.Fatalf("payload aliased Data result: %q", got)
	}
}

func TestParseChunk(t *testing.T) {
	raw := testChunkBytes(42, "RuSt", []byte(testMessage), testCRC)
	c, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse chunk: %v", err)
	}
	if c.Length() != 42 {
		t.Fatalf("unexpected length: %d", c.Length())
	}
	if c.Type().String() != "RuSt" {
		t.Fatalf("unexpected type: %q", c.Type())
	}
	text, err := c.Text()
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if text != testMessage {
		t.Fatalf("unexpected text: %q", text)
	}
	if c.CRC() != testCRC {
		t.Fatalf("unexpected crc: %d", c.CRC())
	}
}

func TestChunkRoundTrip(t *testing.T) {
	payloads := [][]byte{nil, []byte("x"), []byte(testMessage), {0x00, 0xFF, 0x89, 0x50}}
	for _, p := range payloads {
		in := New(MustParseType("ruSt"), p)
		raw := in.Bytes()
		if len(raw) != in.Size() {
			t.Fatalf("size mismatch: len=%d size=%d", len(raw), in.Size())
		}
		out, n, err := Decode(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if n != len(raw) {
			t.Fatalf("consumed %d of %d bytes", n, len(raw))
		}
		if !out.Equal(in) || out.CRC() != in.CRC() {
			t.Fatalf("round trip mismatch: in=%v out=%v", in.Data(), out.Data())
		}
	}
}

func TestBytesLayout(t *testing.T) {
	raw := New(MustParseType("RuSt"), []byte(testMessage)).Bytes()
	want := testChunkBytes(42, "RuSt", []byte(testMessage), testCRC)
	if !bytes.Equal(raw, want) {
		t.Fatalf("layout mismatch:\n got=%x\nwant=%x", raw, want)
	}
}

func TestParseChecksumMismatch(t *testing.T) {
	raw := testChunkBytes(42, "RuSt", []byte(testMessage), testCRC^1)
	_, err := Parse(raw)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestParseCorruptLengthIsTruncation(t *testing.T) {
	raw := testChunkBytes(43, "RuSt", []byte(testMessage), testCRC)
	_, err := Parse(raw)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestParseTruncatedFields(t *testing.T) {
	raw := testChunkBytes(42, "RuSt", []byte(testMessage), testCRC)
	for _, n := range []int{0, 3, 4, 7, 8, 20, len(raw) - 1} {
		if _, err := Parse(raw[:n]); !errors.Is(err, ErrTruncated) {
			t.Fatalf("prefix %d: expected ErrTruncated, got %v", n, err)
		}
	}
}

func TestParseRejectsUnsetReservedBit(t *testing.T) {
	typ := MustParseType("Rust")
	raw := New(typ, []byte("x")).Bytes()
	_, err := Parse(raw)
	if !errors.Is(err, ErrReservedBit) {
		t.Fatalf("expected ErrReservedBit, got %v", err)
	}
}

func TestParseRejectsNonAlphabeticType(t *testing.T) {
	raw := testChunkBytes(0, "Ru1t", nil, 0)
	_, err := Parse(raw)
	if !errors.Is(err, ErrTypeNotAlphabetic) {
		t.Fatalf("expected ErrTypeNotAlphabetic, got %v", err)
	}
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	c := New(MustParseType("IHDR"), []byte{0xff, 0xfe, 'a'})
	if _, err := c.Text(); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestStringIsLossy(t *testing.T) {
	c := New(MustParseType("IHDR"), []byte{0xff, 'o', 'k'})
	s := c.String()
	if !strings.HasSuffix(s, "ok") || !strings.ContainsRune(s, '�') {
		t.Fatalf("unexpected rendering: %q", s)
	}
}

func withMaxDataLen(t *testing.T, n int) {
	t.Helper()
	prev := maxDataLen
	maxDataLen = n
	t.Cleanup(func() { maxDataLen = prev })
}

func TestDecodeRejectsPayloadOverCap(t *testing.T) {
	withMaxDataLen(t, 8)
	c := Chunk{typ: MustParseType("ruSt"), data: []byte("123456789")}
	raw := testChunkBytes(9, "ruSt", c.data, c.CRC())
	_, _, err := Decode(raw)
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestDecodeAcceptsPayloadAtCapAndReserializes(t *testing.T) {
	withMaxDataLen(t, 8)
	raw := New(MustParseType("ruSt"), []byte("12345678")).Bytes()
	c, _, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(c.Bytes(), raw) {
		t.Fatalf("reserialized bytes differ")
	}
}

func TestDecodeHugeDeclaredLengthIsTruncation(t *testing.T) {
	raw := testChunkBytes(1<<31, "ruSt", []byte("short"), 0)
	_, _, err := Decode(raw)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
