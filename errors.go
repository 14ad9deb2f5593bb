package iconv

import (
	"github.com/pkg/errors"
)

// Conversion context errors. They follow the errno values iconv(3) reports so
// code written against the C interface reads the same.
var (
	// ErrIllegalSequence is EILSEQ: the input holds a byte sequence that is not
	// valid in the source encoding, or a character the target cannot represent.
	ErrIllegalSequence = errors.New("iconv: illegal input sequence")

	// ErrIncompleteSequence is EINVAL during conversion: the input ends in the
	// middle of a multibyte character.
	ErrIncompleteSequence = errors.New("iconv: incomplete input sequence")

	// ErrShortOutput is E2BIG: the output buffer has no room for the next
	// character.
	ErrShortOutput = errors.New("iconv: output buffer too small")

	// ErrUnsupportedEncoding is EINVAL from iconv_open: one of the labels is
	// unknown, or the pair cannot be converted.
	ErrUnsupportedEncoding = errors.New("iconv: unsupported encoding")

	// ErrAllocation reports that the output buffer could not be sized to hold
	// the result.
	ErrAllocation = errors.New("iconv: cannot allocate output buffer")
)

// isInputError reports whether err describes bad input that the transcoder
// skips over rather than fails on.
func isInputError(err error) bool {
	return errors.Is(err, ErrIllegalSequence) || errors.Is(err, ErrIncompleteSequence)
}
