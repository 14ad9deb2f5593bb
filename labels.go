package iconv

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// LatinFallback is the source label that selects best-effort decoding: input
// is read as UTF-8, and any byte that breaks UTF-8 is taken as a Latin-1 code
// point. As a target label it is plain UTF-8.
const LatinFallback = "utf-8+latin-1"

// stripFallback maps the fallback label onto the encoding actually opened and
// reports whether it was present.
func stripFallback(label string) (string, bool) {
	if label == LatinFallback {
		return LatinFallback[:5], true
	}
	return label, false
}

// wide covers the UTF-32 family, which ianaindex registers without an
// implementation. UCS-4 is big endian unless it says otherwise, as in glibc.
var wide = map[string]encoding.Encoding{
	"utf-32":          utf32.UTF32(utf32.BigEndian, utf32.UseBOM),
	"utf32":           utf32.UTF32(utf32.BigEndian, utf32.UseBOM),
	"utf-32be":        utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
	"utf-32le":        utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
	"ucs-4":           utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
	"ucs4":            utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
	"ucs-4be":         utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
	"ucs-4le":         utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
	"iso-10646-ucs-4": utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
}

// iconvAliases are glibc spellings with no IANA entry. WHATWG knows several of
// them but binds them to Windows code pages.
var iconvAliases = map[string]string{
	"ascii":          "us-ascii",
	"646":            "us-ascii",
	"iso646":         "us-ascii",
	"ansi_x3.4-1986": "us-ascii",
}

var (
	isoName   = regexp.MustCompile(`^iso[-_]?8859[-_]?(\d{1,2})$`)
	latinName = regexp.MustCompile(`^latin-(\d{1,2})$`)
)

// iconvName rewrites a glibc style label to its IANA form. The result reports
// whether the label was one of those, in which case it must not be
// reinterpreted as a WHATWG label.
func iconvName(name string) (string, bool) {
	if alias, ok := iconvAliases[name]; ok {
		return alias, true
	}
	if m := isoName.FindStringSubmatch(name); m != nil {
		return "iso-8859-" + m[1], true
	}
	if m := latinName.FindStringSubmatch(name); m != nil {
		return "latin" + m[1], true
	}
	return name, false
}

// Lookup resolves an encoding label the way iconv(3) names encodings: IANA
// names and their glibc spellings first, then WHATWG labels for the rest
// (utf8, cp1252, x-sjis and friends). A name iconv knows is never rebound to
// the encoding WHATWG gives it, so ascii stays ASCII rather than becoming
// windows-1252. Matching is case-insensitive.
func Lookup(label string) (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" {
		return nil, errors.Wrap(ErrUnsupportedEncoding, "empty encoding label")
	}
	if e, ok := wide[name]; ok {
		return e, nil
	}

	name, glibc := iconvName(name)

	// ianaindex returns a nil encoding with a nil error for registered names it
	// has no implementation for.
	e, err := ianaindex.IANA.Encoding(name)
	if err == nil && e != nil {
		return e, nil
	}
	if err == nil || glibc {
		return nil, errors.Wrapf(ErrUnsupportedEncoding, "no implementation for %q", label)
	}

	e, err = htmlindex.Get(name)
	if err != nil || e == nil || e == encoding.Replacement {
		return nil, errors.Wrapf(ErrUnsupportedEncoding, "unknown encoding %q", label)
	}
	return e, nil
}

// LookupWeb resolves a WHATWG encoding label only.
func LookupWeb(label string) (encoding.Encoding, error) {
	e, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil || e == encoding.Replacement {
		return nil, errors.Wrapf(ErrUnsupportedEncoding, "unknown encoding %q", label)
	}
	return e, nil
}

func isUTF8(e encoding.Encoding) bool {
	return e == unicode.UTF8
}
