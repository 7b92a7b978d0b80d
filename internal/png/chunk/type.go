package chunk

import "fmt"

// TypeLen is the byte width of a chunk type code.
const TypeLen = 4

// Type is a four letter chunk type code. The case of each letter carries one
// property bit: ancillary, private, reserved and safe-to-copy.
type Type struct {
	code [TypeLen]byte
}

// TypeFromBytes builds a Type from raw wire bytes. Every byte must be an ASCII
// letter; the reserved bit is not checked here.
func TypeFromBytes(b [TypeLen]byte) (Type, error) {
	for i, c := range b {
		if c >= 0x80 {
			return Type{}, fmt.Errorf("%w: byte %d is 0x%02x", ErrTypeNotASCII, i, c)
		}
		if !isLetter(c) {
			return Type{}, fmt.Errorf("%w: byte %d is 0x%02x", ErrTypeNotAlphabetic, i, c)
		}
	}
	return Type{code: b}, nil
}

// ParseType builds a Type from its textual form, e.g. "ruSt".
func ParseType(s string) (Type, error) {
	if len(s) != TypeLen {
		return Type{}, fmt.Errorf("%w: got %q", ErrTypeLength, s)
	}
	var code [TypeLen]byte
	for i := 0; i < TypeLen; i++ {
		if !isLetter(s[i]) {
			return Type{}, fmt.Errorf("%w: got %q", ErrTypeNotAlphabetic, s)
		}
		code[i] = s[i]
	}
	return Type{code: code}, nil
}

// MustParseType is ParseType for compile-time constants.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Type) Bytes() [TypeLen]byte {
	return t.code
}

func (t Type) String() string {
	return string(t.code[:])
}

// IsValid reports whether the reserved bit (third letter uppercase) is set.
func (t Type) IsValid() bool {
	return t.IsReservedBitValid()
}

func (t Type) IsCritical() bool {
	return isUpper(t.code[0])
}

func (t Type) IsPublic() bool {
	return isUpper(t.code[1])
}

func (t Type) IsReservedBitValid() bool {
	return isUpper(t.code[2])
}

func (t Type) IsSafeToCopy() bool {
	return !isUpper(t.code[3])
}

func isLetter(c byte) bool {
	return isUpper(c) || (c >= 'a' && c <= 'z')
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
