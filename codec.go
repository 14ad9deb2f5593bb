package iconv

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// maxCharLen bounds how many source bytes a single character (or shift
// sequence) may take in any supported encoding.
const maxCharLen = 8

// decoder reads one character from src and writes its UTF-8 form to dst. A
// step may consume input without producing output (byte order marks, shift
// sequences).
type decoder interface {
	decode(dst, src []byte) (nDst, nSrc int, err error)
	reset()
}

// encoder writes UTF-8 text as target encoding bytes. A step either encodes
// all of src or none of it.
type encoder interface {
	encode(dst, src []byte) (nDst int, err error)
	flush(dst []byte) (nDst int, err error)
	reset()
}

func newDecoder(e encoding.Encoding) decoder {
	if isUTF8(e) {
		return utf8Decoder{}
	}
	return &textDecoder{t: e.NewDecoder(), check: e.NewEncoder()}
}

func newEncoder(e encoding.Encoding) encoder {
	if isUTF8(e) {
		return utf8Encoder{}
	}
	return &textEncoder{t: e.NewEncoder()}
}

// utf8Decoder validates strictly: invalid bytes are errors, never U+FFFD.
type utf8Decoder struct{}

func (utf8Decoder) decode(dst, src []byte) (int, int, error) {
	r, size := utf8.DecodeRune(src)
	if r == utf8.RuneError && size <= 1 {
		if !utf8.FullRune(src) {
			return 0, 0, ErrIncompleteSequence
		}
		return 0, 0, ErrIllegalSequence
	}
	if len(dst) < size {
		return 0, 0, ErrShortOutput
	}
	return copy(dst, src[:size]), size, nil
}

func (utf8Decoder) reset() {}

type utf8Encoder struct{}

func (utf8Encoder) encode(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, ErrShortOutput
	}
	return copy(dst, src), nil
}

func (utf8Encoder) flush([]byte) (int, error) { return 0, nil }

func (utf8Encoder) reset() {}

// textDecoder drives an x/text decoder with a source window that grows one
// byte at a time, so each step covers exactly one character.
type textDecoder struct {
	t     transform.Transformer
	check *encoding.Encoder
}

func (d *textDecoder) decode(dst, src []byte) (int, int, error) {
	for n := 1; n <= len(src) && n <= maxCharLen; n++ {
		atEOF := n == len(src)
		nDst, nSrc, err := d.t.Transform(dst, src[:n], atEOF)
		switch {
		case nSrc > 0:
			if !d.roundTrips(dst[:nDst], src[:nSrc]) {
				return 0, 0, ErrIllegalSequence
			}
			return nDst, nSrc, nil
		case err == transform.ErrShortSrc:
			if atEOF {
				return 0, 0, ErrIncompleteSequence
			}
		case err == transform.ErrShortDst:
			return 0, 0, ErrShortOutput
		case err != nil:
			return 0, 0, ErrIllegalSequence
		}
	}
	return 0, 0, ErrIllegalSequence
}

// roundTrips catches the decoder's replacement for undefined bytes: output
// containing U+FFFD is only accepted when it encodes back to the input.
func (d *textDecoder) roundTrips(out, in []byte) bool {
	if !bytes.ContainsRune(out, utf8.RuneError) {
		return true
	}
	back, err := d.check.Bytes(out)
	return err == nil && bytes.HasSuffix(back, in)
}

func (d *textDecoder) reset() { d.t.Reset() }

// textEncoder runs each step into its own buffer first. x/text encoders that
// write a byte order mark or shift sequence change state even when the
// character after it does not fit, so the whole step is held back until dst
// has room for it and handed out on the retry.
type textEncoder struct {
	t       transform.Transformer
	buf     [4 * maxCharLen]byte
	pending []byte
}

func (e *textEncoder) encode(dst, src []byte) (int, error) {
	if e.pending == nil {
		nDst, nSrc, err := e.t.Transform(e.buf[:], src, false)
		if err != nil || nSrc < len(src) {
			return 0, ErrIllegalSequence
		}
		e.pending = e.buf[:nDst]
	}
	return e.emit(dst)
}

func (e *textEncoder) flush(dst []byte) (int, error) {
	if e.pending == nil {
		nDst, _, err := e.t.Transform(e.buf[:], nil, true)
		if err != nil {
			return 0, ErrIllegalSequence
		}
		e.pending = e.buf[:nDst]
	}
	return e.emit(dst)
}

func (e *textEncoder) emit(dst []byte) (int, error) {
	if len(dst) < len(e.pending) {
		return 0, ErrShortOutput
	}
	n := copy(dst, e.pending)
	e.pending = nil
	return n, nil
}

func (e *textEncoder) reset() {
	e.t.Reset()
	e.pending = nil
}
