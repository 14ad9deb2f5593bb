package iconv

import "go.uber.org/zap"

// TextCodec converts between UTF-8 strings and encodings named by WHATWG
// labels. Unknown labels are refused and bytes that do not convert are
// dropped.
type TextCodec struct {
	t *Transcoder
}

// NewTextCodec returns a TextCodec logging to logger, which may be nil.
func NewTextCodec(logger *zap.Logger) *TextCodec {
	return &TextCodec{t: NewTranscoder(Options{Open: OpenWeb, Strict: true, Logger: logger})}
}

var web = NewTextCodec(nil)

// Decode converts data in the encoding named by label to a UTF-8 string.
func (c *TextCodec) Decode(data []byte, label string) (string, error) {
	out, err := c.t.Convert(label, "utf-8", data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts s to the encoding named by label. Characters the encoding
// cannot represent are dropped.
func (c *TextCodec) Encode(s string, label string) ([]byte, error) {
	return c.t.Convert("utf-8", label, []byte(s))
}

// Decode converts data in the encoding named by a WHATWG label to a UTF-8
// string. Byte sequences that do not decode are dropped.
func Decode(data []byte, label string) (string, error) {
	return web.Decode(data, label)
}

// Encode converts s to the encoding named by a WHATWG label.
func Encode(s string, label string) ([]byte, error) {
	return web.Encode(s, label)
}
