package iconv

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// expansion is the worst case growth from one input byte to output bytes
// under the common multibyte encodings.
const expansion = 4

// Options configure a Transcoder. The zero value matches the behavior of the
// package level Convert.
type Options struct {
	// MaxOutputSize caps the output buffer in bytes. Zero means no cap beyond
	// what fits in an int.
	MaxOutputSize int

	// Strict turns an unsupported encoding pair into ErrUnsupportedEncoding
	// instead of returning the input unchanged.
	Strict bool

	// Open overrides how conversion contexts are created. Defaults to Open.
	Open OpenFunc

	Logger *zap.Logger
}

// Transcoder converts byte strings between encodings. It holds no per call
// state and is safe for concurrent use.
type Transcoder struct {
	maxOutput int
	strict    bool
	open      OpenFunc
	logger    *zap.Logger
}

// NewTranscoder returns a Transcoder configured by opts.
func NewTranscoder(opts Options) *Transcoder {
	t := &Transcoder{
		maxOutput: opts.MaxOutputSize,
		strict:    opts.Strict,
		open:      opts.Open,
		logger:    opts.Logger,
	}
	if t.maxOutput <= 0 {
		t.maxOutput = math.MaxInt
	}
	if t.open == nil {
		t.open = Open
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// Convert transcodes input from one encoding to another.
//
// With LatinFallback as the source, input is read as UTF-8 and every byte
// that is not part of valid UTF-8 is written as the two byte UTF-8 form of
// its Latin-1 code point. Otherwise bytes that cannot be converted are
// dropped. Neither case is an error.
//
// If the encoding pair cannot be opened the input is returned unchanged,
// unless the Transcoder is strict. The only other failure is ErrAllocation.
//
// The output buffer starts at four times the input length, which holds for
// every target without a byte order mark or shift state. UTF-32, UTF-16 with a
// byte order mark and ISO-2022 targets may need more; the buffer then grows up
// to MaxOutputSize. The result is a fresh slice of exactly the output length.
func (t *Transcoder) Convert(fromEncoding, toEncoding string, input []byte) ([]byte, error) {
	from, latin1 := stripFallback(fromEncoding)
	to, _ := stripFallback(toEncoding)

	out, err := t.alloc(len(input))
	if err != nil {
		return nil, err
	}

	cd, err := t.open(from, to)
	if err != nil {
		if t.strict {
			return nil, errors.Wrapf(ErrUnsupportedEncoding, "%s to %s", fromEncoding, toEncoding)
		}
		t.logger.Debug("encoding pair unsupported, passing input through",
			zap.String("from", fromEncoding),
			zap.String("to", toEncoding),
			zap.Error(err))
		return shrink(input), nil
	}
	defer cd.Close()

	var read, written, skipped int
	for read < len(input) {
		nRead, nWritten, err := cd.Convert(input[read:], out[written:])
		read += nRead
		written += nWritten

		switch {
		case err == nil:
		case errors.Is(err, ErrShortOutput):
			if out, err = t.grow(out, written, len(out)-written+1); err != nil {
				return nil, err
			}
		case isInputError(err):
			if latin1 && input[read]&0x80 != 0 {
				if len(out)-written < 2 {
					if out, err = t.grow(out, written, 2); err != nil {
						return nil, err
					}
				}
				written += putLatin1(out[written:], input[read])
			}
			read++
			skipped++
		default:
			return nil, errors.Wrapf(err, "converting %s to %s", fromEncoding, toEncoding)
		}
	}

	// A target that has written nothing has no shift state to close.
	for written > 0 {
		n, err := cd.Flush(out[written:])
		written += n
		if err == nil {
			break
		}
		if !errors.Is(err, ErrShortOutput) {
			// Nothing left to convert; a target that cannot close its shift
			// state just ends where it is.
			break
		}
		if out, err = t.grow(out, written, len(out)-written+1); err != nil {
			return nil, err
		}
	}

	if skipped > 0 {
		t.logger.Debug("invalid input bytes",
			zap.String("from", fromEncoding),
			zap.String("to", toEncoding),
			zap.Int("count", skipped),
			zap.Bool("repaired", latin1))
	}

	return shrink(out[:written]), nil
}

// shrink copies b into a slice of its own length so the oversized conversion
// buffer can be collected.
func shrink(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// putLatin1 writes b, taken as a Latin-1 code point, as two bytes of UTF-8.
func putLatin1(dst []byte, b byte) int {
	dst[0] = 0xc0 | (b&0xc0)>>6
	dst[1] = 0x80 | b&0x3f
	return 2
}

// alloc sizes the output buffer for n input bytes.
func (t *Transcoder) alloc(n int) ([]byte, error) {
	if n > t.maxOutput/expansion {
		return nil, errors.Wrapf(ErrAllocation, "%d input bytes need %d bytes of output, limit is %d",
			n, uint64(n)*expansion, t.maxOutput)
	}
	return make([]byte, n*expansion), nil
}

// grow makes room for at least need more bytes after the first used bytes of
// buf, doubling up to the configured limit.
func (t *Transcoder) grow(buf []byte, used, need int) ([]byte, error) {
	if len(buf)-used >= need {
		return buf, nil
	}
	if t.maxOutput-used < need {
		return nil, errors.Wrapf(ErrAllocation, "output needs more than %d bytes", t.maxOutput)
	}

	size := len(buf)
	if size > t.maxOutput/2 {
		size = t.maxOutput
	} else {
		size = max(2*size, used+need)
	}

	grown := make([]byte, size)
	copy(grown, buf[:used])
	return grown, nil
}
