package message

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/danmuck/pngctl/internal/observability"
	"github.com/danmuck/pngctl/internal/png"
	"github.com/danmuck/pngctl/internal/png/chunk"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidChunkType = errors.New("message: invalid chunk type")
	ErrNoMessages       = errors.New("message: no potential secret messages found")
)

// Candidate is one chunk payload that decodes as non-empty text.
type Candidate struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChunkInfo describes one chunk for listings.
type ChunkInfo struct {
	Index         int    `json:"index"`
	Type          string `json:"type"`
	Length        uint32 `json:"length"`
	CRC           uint32 `json:"crc"`
	Critical      bool   `json:"critical"`
	Public        bool   `json:"public"`
	ReservedValid bool   `json:"reserved_valid"`
	SafeToCopy    bool   `json:"safe_to_copy"`
}

// ParseChunkType parses caller-supplied type text and requires the reserved
// bit.
func ParseChunkType(text string) (chunk.Type, error) {
	t, err := chunk.ParseType(text)
	if err != nil {
		return chunk.Type{}, fmt.Errorf("%w: %w", ErrInvalidChunkType, err)
	}
	if !t.IsValid() {
		return chunk.Type{}, fmt.Errorf("%w: %w: %s", ErrInvalidChunkType, chunk.ErrReservedBit, text)
	}
	return t, nil
}

// Encode returns a copy of p with msg appended in a new chunk of typeText.
func Encode(p *png.Png, typeText, msg string) (*png.Png, error) {
	out, err := encode(p, typeText, msg)
	record("encode", err, p.Size())
	return out, err
}

func encode(p *png.Png, typeText, msg string) (*png.Png, error) {
	t, err := ParseChunkType(typeText)
	if err != nil {
		return nil, err
	}
	if len(msg) > chunk.MaxDataLen {
		return nil, fmt.Errorf("%w: %d bytes", chunk.ErrPayloadTooLarge, len(msg))
	}
	out := p.Clone()
	out.AppendChunk(chunk.New(t, []byte(msg)))
	log.Debug().
		Str("chunk_type", t.String()).
		Int("bytes", len(msg)).
		Int("chunks", out.Len()).
		Msg("message encoded")
	return out, nil
}

// Decode returns the text of the first chunk of typeText.
func Decode(p *png.Png, typeText string) (string, error) {
	text, err := decode(p, typeText)
	record("decode", err, p.Size())
	return text, err
}

func decode(p *png.Png, typeText string) (string, error) {
	t, err := ParseChunkType(typeText)
	if err != nil {
		return "", err
	}
	c, ok := p.ChunkByType(t.String())
	if !ok {
		return "", fmt.Errorf("%w: %s", png.ErrChunkNotFound, t)
	}
	return c.Text()
}

// Scan returns every chunk payload that decodes as non-empty UTF-8, in
// chunk order. Chunks that fail to decode are skipped.
func Scan(p *png.Png) ([]Candidate, error) {
	out := make([]Candidate, 0)
	for _, c := range p.Chunks() {
		text, err := c.Text()
		if err != nil {
			log.Debug().Str("chunk_type", c.Type().String()).Err(err).Msg("skipping chunk")
			continue
		}
		if text == "" {
			continue
		}
		out = append(out, Candidate{Type: c.Type().String(), Message: text})
	}
	var err error
	if len(out) == 0 {
		err = ErrNoMessages
	}
	record("scan", err, p.Size())
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove returns a copy of p without the first chunk of typeText, together
// with the removed chunk. p itself is never modified.
func Remove(p *png.Png, typeText string) (*png.Png, chunk.Chunk, error) {
	out, removed, err := remove(p, typeText)
	record("remove", err, p.Size())
	return out, removed, err
}

func remove(p *png.Png, typeText string) (*png.Png, chunk.Chunk, error) {
	t, err := ParseChunkType(typeText)
	if err != nil {
		return nil, chunk.Chunk{}, err
	}
	out := p.Clone()
	removed, err := out.RemoveChunk(t.String())
	if err != nil {
		return nil, chunk.Chunk{}, err
	}
	log.Debug().
		Str("chunk_type", t.String()).
		Uint32("bytes", removed.Length()).
		Int("chunks", out.Len()).
		Msg("chunk removed")
	return out, removed, nil
}

// Print writes every chunk payload as text, one chunk per line. Invalid
// UTF-8 is replaced rather than rejected.
func Print(w io.Writer, p *png.Png) error {
	err := printChunks(w, p)
	record("print", err, p.Size())
	return err
}

func printChunks(w io.Writer, p *png.Png) error {
	for _, c := range p.Chunks() {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", c.Type(), c); err != nil {
			return err
		}
	}
	return nil
}

// List describes every chunk in order.
func List(p *png.Png) []ChunkInfo {
	chunks := p.Chunks()
	out := make([]ChunkInfo, 0, len(chunks))
	for i, c := range chunks {
		t := c.Type()
		out = append(out, ChunkInfo{
			Index:         i,
			Type:          t.String(),
			Length:        c.Length(),
			CRC:           c.CRC(),
			Critical:      t.IsCritical(),
			Public:        t.IsPublic(),
			ReservedValid: t.IsReservedBitValid(),
			SafeToCopy:    t.IsSafeToCopy(),
		})
	}
	record("list", nil, p.Size())
	return out
}

// WriteList renders infos as an aligned table.
func WriteList(w io.Writer, infos []ChunkInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTYPE\tLENGTH\tCRC\tFLAGS")
	for _, info := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%08x\t%s\n", info.Index, info.Type, info.Length, info.CRC, flags(info))
	}
	return tw.Flush()
}

// Result maps an operation error to a metrics label.
func Result(err error) string {
	switch {
	case err == nil:
		return observability.ResultOK
	case errors.Is(err, png.ErrChunkNotFound), errors.Is(err, ErrNoMessages):
		return observability.ResultNotFound
	case errors.Is(err, ErrInvalidChunkType), errors.Is(err, chunk.ErrInvalidUTF8), errors.Is(err, chunk.ErrPayloadTooLarge):
		return observability.ResultInvalid
	case png.IsStructural(err):
		return observability.ResultCorrupt
	default:
		return observability.ResultError
	}
}

func record(op string, err error, size int) {
	observability.RecordChunkOperation(op, Result(err), size)
}

func flags(info ChunkInfo) string {
	out := []byte("----")
	if info.Critical {
		out[0] = 'C'
	}
	if info.Public {
		out[1] = 'P'
	}
	if info.ReservedValid {
		out[2] = 'R'
	}
	if info.SafeToCopy {
		out[3] = 'S'
	}
	return string(out)
}
