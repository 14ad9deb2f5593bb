package bridge

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tdsgo/iconv"
)

const (
	// BinaryUtils is the module exporting convert/3.
	BinaryUtils = "Tds.BinaryUtils"
	// Encoding is the module exporting encode/2 and decode/2.
	Encoding = "Tds.Encoding"
)

// NewBinaryUtils exports convert(from, to, data) backed by t.
func NewBinaryUtils(t *iconv.Transcoder) *Module {
	return NewModule(BinaryUtils, Func{
		Name:  "convert",
		Arity: 3,
		Call: func(args []any) (any, error) {
			from, err := Text(args[0])
			if err != nil {
				return nil, err
			}
			to, err := Text(args[1])
			if err != nil {
				return nil, err
			}
			data, err := Binary(args[2])
			if err != nil {
				return nil, err
			}
			if from == "" || to == "" {
				return nil, errors.Wrap(ErrBadArgument, "empty encoding name")
			}
			out, err := t.Convert(from, to, data)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	})
}

// NewEncoding exports decode(data, label) and encode(string, label). An
// unknown label, or a string to encode that is not UTF-8, is a bad argument.
func NewEncoding() *Module {
	return NewModule(Encoding,
		Func{
			Name:  "decode",
			Arity: 2,
			Call: func(args []any) (any, error) {
				data, err := Binary(args[0])
				if err != nil {
					return nil, err
				}
				label, err := Text(args[1])
				if err != nil {
					return nil, err
				}
				out, err := iconv.Decode(data, label)
				if err != nil {
					return nil, badLabel(err)
				}
				return out, nil
			},
		},
		Func{
			Name:  "encode",
			Arity: 2,
			Call: func(args []any) (any, error) {
				s, err := Text(args[0])
				if err != nil {
					return nil, err
				}
				if !utf8.ValidString(s) {
					return nil, errors.Wrap(ErrBadArgument, "text is not valid UTF-8")
				}
				label, err := Text(args[1])
				if err != nil {
					return nil, err
				}
				out, err := iconv.Encode(s, label)
				if err != nil {
					return nil, badLabel(err)
				}
				return out, nil
			},
		},
	)
}

func badLabel(err error) error {
	if errors.Is(err, iconv.ErrUnsupportedEncoding) {
		return errors.Wrap(ErrBadArgument, err.Error())
	}
	return err
}
