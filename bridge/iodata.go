package bridge

import (
	"github.com/pkg/errors"
)

// Binary flattens an iodata term into a byte slice. A term is a []byte, a
// string, a byte valued int, or a []any of terms nested to any depth.
func Binary(term any) ([]byte, error) {
	switch v := term.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}

	var out []byte
	if err := appendIOData(&out, term); err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func appendIOData(out *[]byte, term any) error {
	switch v := term.(type) {
	case []byte:
		*out = append(*out, v...)
	case string:
		*out = append(*out, v...)
	case byte:
		*out = append(*out, v)
	case int:
		if v < 0 || v > 0xff {
			return errors.Wrapf(ErrBadArgument, "%d is not a byte", v)
		}
		*out = append(*out, byte(v))
	case []any:
		for _, t := range v {
			if err := appendIOData(out, t); err != nil {
				return err
			}
		}
	default:
		return errors.Wrapf(ErrBadArgument, "%T is not iodata", term)
	}
	return nil
}

// Text is Binary for arguments used as text, such as encoding names.
func Text(term any) (string, error) {
	b, err := Binary(term)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
