//go:build iconv && cgo

package iconv

/*
#include <stdlib.h>
#include <iconv.h>
#include <errno.h>

// Go memory can't be passed as char**, so take the buffers directly and
// report how much of each was used.
static int iconv_step(iconv_t cd, char *in, size_t inleft, char *out, size_t outleft,
                      size_t *nin, size_t *nout) {
	char *ip = in, *op = out;
	size_t il = inleft, ol = outleft;
	size_t r = iconv(cd, in ? &ip : NULL, in ? &il : NULL, &op, &ol);
	*nin = inleft - il;
	*nout = outleft - ol;
	return r == (size_t)-1 ? errno : 0;
}

static int iconv_open_ok(iconv_t cd) {
	return cd != (iconv_t)-1;
}
*/
import "C"

import (
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
)

// LibcConverter is a conversion context backed by the system iconv(3).
type LibcConverter struct {
	context C.iconv_t
	open    bool
}

// NewLibcConverter opens iconv for the pair. Labels are passed to iconv_open
// as they are, so suffixes like //TRANSLIT work where the C library has them.
func NewLibcConverter(fromEncoding string, toEncoding string) (*LibcConverter, error) {
	toCode := C.CString(toEncoding)
	fromCode := C.CString(fromEncoding)
	defer C.free(unsafe.Pointer(toCode))
	defer C.free(unsafe.Pointer(fromCode))

	context, err := C.iconv_open(toCode, fromCode)
	if C.iconv_open_ok(context) == 0 {
		if err == syscall.EINVAL || err == nil {
			return nil, errors.Wrapf(ErrUnsupportedEncoding, "%s to %s", fromEncoding, toEncoding)
		}
		return nil, errors.Wrap(err, "iconv_open")
	}

	return &LibcConverter{context: context, open: true}, nil
}

// OpenLibc is NewLibcConverter as an OpenFunc.
func OpenLibc(fromEncoding, toEncoding string) (Context, error) {
	c, err := NewLibcConverter(fromEncoding, toEncoding)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the iconv descriptor. Calling it more than once is harmless.
func (c *LibcConverter) Close() error {
	if !c.open {
		return nil
	}
	c.open = false
	if _, err := C.iconv_close(c.context); err != nil {
		return errors.Wrap(err, "iconv_close")
	}
	return nil
}

// Convert makes one call to iconv.
func (c *LibcConverter) Convert(input []byte, output []byte) (bytesRead int, bytesWritten int, err error) {
	if !c.open {
		return 0, 0, errors.New("iconv: converter is closed")
	}
	if len(input) == 0 {
		return 0, 0, nil
	}
	if len(output) == 0 {
		return 0, 0, ErrShortOutput
	}

	var nin, nout C.size_t
	errno := C.iconv_step(c.context,
		(*C.char)(unsafe.Pointer(&input[0])), C.size_t(len(input)),
		(*C.char)(unsafe.Pointer(&output[0])), C.size_t(len(output)),
		&nin, &nout)

	return int(nin), int(nout), fromErrno(syscall.Errno(errno))
}

// Flush calls iconv with no input, which writes any closing shift sequence.
func (c *LibcConverter) Flush(output []byte) (int, error) {
	if !c.open {
		return 0, errors.New("iconv: converter is closed")
	}
	if len(output) == 0 {
		return 0, ErrShortOutput
	}

	var nin, nout C.size_t
	errno := C.iconv_step(c.context, nil, 0,
		(*C.char)(unsafe.Pointer(&output[0])), C.size_t(len(output)),
		&nin, &nout)

	return int(nout), fromErrno(syscall.Errno(errno))
}

// Reset returns the descriptor to its initial shift state.
func (c *LibcConverter) Reset() {
	if c.open {
		C.iconv(c.context, nil, nil, nil, nil)
	}
}

func fromErrno(errno syscall.Errno) error {
	switch errno {
	case 0:
		return nil
	case syscall.EILSEQ:
		return ErrIllegalSequence
	case syscall.EINVAL:
		return ErrIncompleteSequence
	case syscall.E2BIG:
		return ErrShortOutput
	default:
		return errors.Wrap(errno, "iconv")
	}
}
