package iconv

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// Context is an open conversion context for one (source, target) pair. It
// follows the iconv(3) model: Convert consumes as much input as it can and
// reports how far it got along with the error that stopped it.
type Context interface {
	Convert(input, output []byte) (bytesRead, bytesWritten int, err error)
	Flush(output []byte) (bytesWritten int, err error)
	Close() error
}

// OpenFunc opens a conversion context from one encoding to another.
type OpenFunc func(fromEncoding, toEncoding string) (Context, error)

// Converter is the pure Go conversion context, built on golang.org/x/text.
type Converter struct {
	from, to string
	dec      decoder
	enc      encoder
	scratch  [4 * maxCharLen]byte
	open     bool
}

// NewConverter opens a conversion context. It fails with
// ErrUnsupportedEncoding when either label is unknown.
func NewConverter(fromEncoding string, toEncoding string) (*Converter, error) {
	return newConverter(fromEncoding, toEncoding, Lookup)
}

func newConverter(fromEncoding, toEncoding string, lookup func(string) (encoding.Encoding, error)) (*Converter, error) {
	src, err := lookup(fromEncoding)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}

	dst, err := lookup(toEncoding)
	if err != nil {
		return nil, errors.Wrap(err, "target")
	}

	return &Converter{
		from: fromEncoding,
		to:   toEncoding,
		dec:  newDecoder(src),
		enc:  newEncoder(dst),
		open: true,
	}, nil
}

// Open is NewConverter as an OpenFunc.
func Open(fromEncoding, toEncoding string) (Context, error) {
	c, err := NewConverter(fromEncoding, toEncoding)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// OpenWeb is like Open but accepts WHATWG labels only, so "latin1" is
// windows-1252 as it is on the web.
func OpenWeb(fromEncoding, toEncoding string) (Context, error) {
	c, err := newConverter(fromEncoding, toEncoding, LookupWeb)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the converter. Calling it more than once is harmless.
func (c *Converter) Close() error {
	c.open = false
	return nil
}

// Reset returns the converter to its initial shift state.
func (c *Converter) Reset() {
	c.dec.reset()
	c.enc.reset()
}

// Convert reads bytes from input and writes them to output, one character at
// a time, until input is exhausted or an error stops it. The counts report how
// much of each buffer was used; on error input[bytesRead:] starts with the
// character that could not be converted.
func (c *Converter) Convert(input []byte, output []byte) (bytesRead int, bytesWritten int, err error) {
	if !c.open {
		return 0, 0, errors.New("iconv: converter is closed")
	}

	for bytesRead < len(input) {
		nText, nSrc, err := c.dec.decode(c.scratch[:], input[bytesRead:])
		if err != nil {
			return bytesRead, bytesWritten, err
		}

		nDst, err := c.enc.encode(output[bytesWritten:], c.scratch[:nText])
		if err != nil {
			return bytesRead, bytesWritten, err
		}

		bytesRead += nSrc
		bytesWritten += nDst
	}

	return bytesRead, bytesWritten, nil
}

// Flush writes whatever the target encoding needs to end the output, such as
// a shift back to the initial state.
func (c *Converter) Flush(output []byte) (int, error) {
	if !c.open {
		return 0, errors.New("iconv: converter is closed")
	}
	return c.enc.flush(output)
}

func (c *Converter) String() string {
	return c.from + " -> " + c.to
}
