package testlog

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/danmuck/pngctl/internal/logging"
	"github.com/rs/zerolog/log"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Msgf("test=%s", t.Name())
}

// Chunk is a raw fixture record; the type is written as-is.
type Chunk struct {
	Type string
	Data []byte
}

// FixturePNG frames chunks behind the PNG signature with correct lengths and
// checksums, independent of the png package.
func FixturePNG(t *testing.T, chunks ...Chunk) []byte {
	t.Helper()
	out := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	for _, c := range chunks {
		if len(c.Type) != 4 {
			t.Fatalf("fixture chunk type %q must be 4 bytes", c.Type)
		}
		out = binary.BigEndian.AppendUint32(out, uint32(len(c.Data)))
		out = append(out, c.Type...)
		out = append(out, c.Data...)
		crc := crc32.NewIEEE()
		crc.Write([]byte(c.Type))
		crc.Write(c.Data)
		out = binary.BigEndian.AppendUint32(out, crc.Sum32())
	}
	return out
}

// SamplePNG is a minimal header/text/end stream.
func SamplePNG(t *testing.T) []byte {
	t.Helper()
	return FixturePNG(t,
		Chunk{Type: "IHDR", Data: []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0xff}},
		Chunk{Type: "teXt", Data: []byte("secret")},
		Chunk{Type: "IEND"},
	)
}
