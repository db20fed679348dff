package permutations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ErrInvalidCodepoint = errors.New("invalid codepoint")

// DecodeCodepoint turns a hexadecimal codepoint such as "0430" (an optional
// "0x" or "U+" prefix is accepted) into the character it names.
func DecodeCodepoint(hex string) (string, error) {
	h := strings.TrimSpace(hex)
	for _, prefix := range []string{"0x", "0X", "U+", "u+"} {
		if strings.HasPrefix(h, prefix) {
			h = h[len(prefix):]
			break
		}
	}
	if h == "" {
		return "", fmt.Errorf("%w: empty value %q", ErrInvalidCodepoint, hex)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidCodepoint, hex)
	}
	r := rune(v)
	if v > utf8.MaxRune || !utf8.ValidRune(r) {
		return "", fmt.Errorf("%w: U+%X is outside the Unicode scalar range", ErrInvalidCodepoint, v)
	}
	return string(r), nil
}

// HexToUnicode never fails: it returns "" for anything DecodeCodepoint rejects.
func HexToUnicode(hex string) string {
	s, err := DecodeCodepoint(hex)
	if err != nil {
		return ""
	}
	return s
}
