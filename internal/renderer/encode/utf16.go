package encode

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// utf16LE is reused by utf16Len rather than constructed per call: the
// transcoder holds no per-string state, so one shared encoder is safe
// across the single-threaded core's repeated Build calls.
var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// utf16Len returns the UTF-16 code-unit length of s, computed by
// transcoding through golang.org/x/text/encoding/unicode rather than
// hand-counting surrogate pairs, so the encoder's UTF-16 fields match a
// host's bulk UTF-16 decode exactly.
func utf16Len(s string) int {
	if s == "" {
		return 0
	}
	b, _, err := transform.Bytes(utf16LE.NewEncoder(), []byte(s))
	if err != nil {
		// Document text is maintained as valid UTF-8 by construction
		// (Store never stores a non-boundary edit); this is unreachable
		// on real documents, but degrade rather than fail the encoder,
		// which is never supposed to fail per SPEC_FULL §7.
		return utf8.RuneCountInString(s)
	}
	return len(b) / 2
}
