/*
Package iconv converts byte strings from one character encoding to another.

Conversion follows the iconv(3) model: a conversion context is opened for an
encoding pair and fed input until it is consumed. Bytes that cannot be
converted are skipped rather than failing the call, and an encoding pair that
cannot be opened at all leaves the input unchanged. The source label
"utf-8+latin-1" reads input as UTF-8 but keeps any byte that is not valid
UTF-8 as its Latin-1 character.

The default conversion context is pure Go (golang.org/x/text). Building with
the iconv tag adds OpenLibc, which uses the system iconv through cgo.
*/
package iconv

var std = NewTranscoder(Options{})

// Convert transcodes input with default options. See Transcoder.Convert.
func Convert(fromEncoding string, toEncoding string, input []byte) ([]byte, error) {
	return std.Convert(fromEncoding, toEncoding, input)
}

// ConvertString is Convert for strings.
func ConvertString(input string, fromEncoding string, toEncoding string) (string, error) {
	output, err := std.Convert(fromEncoding, toEncoding, []byte(input))
	if err != nil {
		return "", err
	}
	return string(output), nil
}
