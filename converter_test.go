package iconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type converterTest struct {
	description    string
	input          string
	inputEncoding  string
	output         string
	outputEncoding string
	bytesRead      int
	bytesWritten   int
	err            error
}

var converterTests = []converterTest{
	{
		"simple utf-8 to latin1 conversion success",
		"Hello World!", "utf-8",
		"Hello World!", "latin1",
		12, 12, nil,
	},
	{
		"utf-8 to utf-8 partial",
		"Hello\xFFWorld!", "utf-8",
		"Hello", "utf-8",
		5, 5, ErrIllegalSequence,
	},
	{
		"invalid input sequence causes EILSEQ",
		"\xFF", "utf-8",
		"", "latin1",
		0, 0, ErrIllegalSequence,
	},
	{
		"incomplete input sequence causes EINVAL",
		"\xC2", "utf-8",
		"", "latin1",
		0, 0, ErrIncompleteSequence,
	},
	{
		"incomplete input causes partial output",
		"Hello\xC2", "utf-8",
		"Hello", "latin1",
		5, 5, ErrIncompleteSequence,
	},
	{
		"valid input but no conversion causes EILSEQ",
		"你好世界 Hello World", "utf-8",
		"", "latin1",
		0, 0, ErrIllegalSequence,
	},
	{
		"latin1 to utf-8 expands",
		"caf\xE9", "latin1",
		"café", "utf-8",
		4, 5, nil,
	},
	{
		"shift_jis to utf-8",
		"\x93\xfa\x96\x7b", "shift_jis",
		"日本", "utf-8",
		4, 6, nil,
	},
}

func TestConverterConvert(t *testing.T) {
	for _, test := range converterTests {
		t.Run(test.description, func(t *testing.T) {
			converter, err := NewConverter(test.inputEncoding, test.outputEncoding)
			require.NoError(t, err)
			defer converter.Close()

			output := make([]byte, 50)
			bytesRead, bytesWritten, err := converter.Convert([]byte(test.input), output)

			assert.Equal(t, test.bytesRead, bytesRead, "bytesRead")
			assert.Equal(t, test.bytesWritten, bytesWritten, "bytesWritten")
			assert.Equal(t, test.output, string(output[:bytesWritten]))
			if test.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.err)
			}
		})
	}
}

func TestNewConverterUnsupported(t *testing.T) {
	_, err := NewConverter("doesnotexist", "utf-8")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)

	_, err = NewConverter("utf-8", "doesnotexist")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)

	_, err = NewConverter("", "utf-8")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestConverterShortOutput(t *testing.T) {
	converter, err := NewConverter("utf-8", "utf-8")
	require.NoError(t, err)
	defer converter.Close()

	output := make([]byte, 4)
	bytesRead, bytesWritten, err := converter.Convert([]byte("aéé"), output)

	// 'a' and the first 'é' fit, the second does not.
	assert.ErrorIs(t, err, ErrShortOutput)
	assert.Equal(t, 3, bytesRead)
	assert.Equal(t, 3, bytesWritten)
	assert.Equal(t, "aé", string(output[:bytesWritten]))

	bytesRead, bytesWritten, err = converter.Convert([]byte("aéé")[bytesRead:], make([]byte, 4))
	assert.NoError(t, err)
	assert.Equal(t, 2, bytesRead)
	assert.Equal(t, 2, bytesWritten)
}

func TestConverterClosed(t *testing.T) {
	converter, err := NewConverter("utf-8", "latin1")
	require.NoError(t, err)

	require.NoError(t, converter.Close())
	require.NoError(t, converter.Close())

	_, _, err = converter.Convert([]byte("a"), make([]byte, 4))
	assert.Error(t, err)
	_, err = converter.Flush(make([]byte, 4))
	assert.Error(t, err)
}

func TestConverterFlushWithoutShiftState(t *testing.T) {
	converter, err := NewConverter("utf-8", "windows-1252")
	require.NoError(t, err)
	defer converter.Close()

	output := make([]byte, 8)
	_, n, err := converter.Convert([]byte("€"), output)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = converter.Flush(output[n:])
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestConverterRejectsUndefinedBytes(t *testing.T) {
	// 0xFF is neither a single byte character nor a lead byte in Shift JIS.
	converter, err := NewConverter("shift_jis", "utf-8")
	require.NoError(t, err)
	defer converter.Close()

	bytesRead, bytesWritten, err := converter.Convert([]byte("a\xFFb"), make([]byte, 16))
	assert.ErrorIs(t, err, ErrIllegalSequence)
	assert.Equal(t, 1, bytesRead)
	assert.Equal(t, 1, bytesWritten)
}

func TestConverterDecodesReplacementCharacter(t *testing.T) {
	// A real U+FFFD in the source must survive.
	converter, err := NewConverter("utf-16le", "utf-8")
	require.NoError(t, err)
	defer converter.Close()

	output := make([]byte, 16)
	bytesRead, bytesWritten, err := converter.Convert([]byte("\xFD\xFF"), output)
	require.NoError(t, err)
	assert.Equal(t, 2, bytesRead)
	assert.Equal(t, "�", string(output[:bytesWritten]))
}

func TestConverterHoldsBackStepThatDoesNotFit(t *testing.T) {
	converter, err := NewConverter("latin1", "utf-32")
	require.NoError(t, err)
	defer converter.Close()

	// The byte order mark and the character go out together or not at all.
	bytesRead, bytesWritten, err := converter.Convert([]byte("a"), make([]byte, 4))
	assert.ErrorIs(t, err, ErrShortOutput)
	assert.Zero(t, bytesRead)
	assert.Zero(t, bytesWritten)

	output := make([]byte, 8)
	bytesRead, bytesWritten, err = converter.Convert([]byte("a"), output)
	require.NoError(t, err)
	assert.Equal(t, 1, bytesRead)
	assert.Equal(t, "\x00\x00\xFE\xFF\x00\x00\x00a", string(output[:bytesWritten]))
}

func TestConverterFlushShiftSequence(t *testing.T) {
	converter, err := NewConverter("utf-8", "iso-2022-jp")
	require.NoError(t, err)
	defer converter.Close()

	output := make([]byte, 16)
	_, n, err := converter.Convert([]byte("日"), output)
	require.NoError(t, err)

	_, err = converter.Flush(output[n : n+2])
	assert.ErrorIs(t, err, ErrShortOutput)

	m, err := converter.Flush(output[n:])
	require.NoError(t, err)
	assert.Equal(t, "\x1b$BF|\x1b(B", string(output[:n+m]))
}
