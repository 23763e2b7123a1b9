package bencode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	zbencode "github.com/zeebo/bencode"
)

func TestDecode(t *testing.T) {
	var tests = []struct {
		name   string
		given  string
		assert func(t *testing.T, actual *Value, err error)
	}{
		{
			name:  "integer",
			given: "i123432e",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				n, ok := actual.Int()
				assert.True(t, ok)
				assert.Equal(t, int64(123432), n)
			},
		},
		{
			name:  "negative integer",
			given: "i-42e",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				n, _ := actual.Int()
				assert.Equal(t, int64(-42), n)
			},
		},
		{
			name:  "zero",
			given: "i0e",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				n, _ := actual.Int()
				assert.Equal(t, int64(0), n)
			},
		},
		{
			name:  "byte string",
			given: "4:spam",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				b, ok := actual.Bytes()
				assert.True(t, ok)
				assert.Equal(t, []byte("spam"), b)
			},
		},
		{
			name:  "empty byte string",
			given: "0:",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				b, ok := actual.Bytes()
				assert.True(t, ok)
				assert.Empty(t, b)
			},
		},
		{
			name:  "byte string holding arbitrary bytes",
			given: "3:\x00\xff:",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				b, _ := actual.Bytes()
				assert.Equal(t, []byte{0x00, 0xff, ':'}, b)
			},
		},
		{
			name:  "heterogeneous list",
			given: "li123e2:aale",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				items, ok := actual.List()
				require.True(t, ok)
				require.Len(t, items, 3)
				assert.Equal(t, KindInteger, items[0].Kind())
				assert.Equal(t, KindString, items[1].Kind())
				assert.Equal(t, KindList, items[2].Kind())
				assert.Equal(t, 0, items[2].Len())
			},
		},
		{
			name:  "dictionary keeps encountered order",
			given: "d3:foo3:bar3:abci1ee",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				assert.Equal(t, []string{"foo", "abc"}, actual.Keys())
				v, ok := actual.Get("foo")
				require.True(t, ok)
				b, _ := v.Bytes()
				assert.Equal(t, []byte("bar"), b)
				_, ok = actual.Get("missing")
				assert.False(t, ok)
			},
		},
		{
			name:  "duplicate key keeps last value at first position",
			given: "d1:ai1e1:bi2e1:ai3ee",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b"}, actual.Keys())
				v, _ := actual.Get("a")
				n, _ := v.Int()
				assert.Equal(t, int64(3), n)
			},
		},
		{
			name:  "nested dictionary span",
			given: "d4:infod4:name1:xee",
			assert: func(t *testing.T, actual *Value, err error) {
				require.NoError(t, err)
				info, ok := actual.Get("info")
				require.True(t, ok)
				assert.Equal(t, []byte("d4:name1:xe"), info.Raw())
				start, end := info.Span()
				assert.Equal(t, 7, start)
				assert.Equal(t, 18, end)
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			actual, err := Decode([]byte(tt.given))
			tt.assert(t, actual, err)
		})
	}
}

func TestDecodeSyntaxErrors(t *testing.T) {
	var tests = []struct {
		name   string
		given  string
		offset int
	}{
		{name: "empty input", given: "", offset: 0},
		{name: "unknown type byte", given: "x", offset: 0},
		{name: "empty integer", given: "ie", offset: 1},
		{name: "integer leading zero", given: "i03e", offset: 1},
		{name: "negative zero", given: "i-0e", offset: 1},
		{name: "lone minus", given: "i-e", offset: 1},
		{name: "integer with letters", given: "i12a4e", offset: 1},
		{name: "integer overflow", given: "i9223372036854775808e", offset: 1},
		{name: "unterminated integer", given: "i12", offset: 0},
		{name: "string length leading zero", given: "04:spam", offset: 0},
		{name: "string length without colon", given: "4spam", offset: 1},
		{name: "truncated string", given: "10:short", offset: 3},
		{name: "unterminated list", given: "li1e", offset: 0},
		{name: "unterminated dictionary", given: "d1:ai1e", offset: 0},
		{name: "integer dictionary key", given: "di1ei2ee", offset: 1},
		{name: "list dictionary key", given: "dle1:ae", offset: 1},
		{name: "dictionary key without value", given: "d1:ae", offset: 4},
		{name: "trailing data", given: "i1ei2e", offset: 3},
		{name: "too deep", given: strings.Repeat("l", MaxDepth+1) + strings.Repeat("e", MaxDepth+1), offset: MaxDepth},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			actual, err := Decode([]byte(tt.given))
			assert.Nil(t, actual)
			var syntaxErr *SyntaxError
			if assert.ErrorAs(t, err, &syntaxErr) {
				assert.Equal(t, tt.offset, syntaxErr.Offset)
				assert.Contains(t, err.Error(), "offset")
			}
		})
	}
}

func TestDecodeAt(t *testing.T) {
	buf := []byte("i1e4:spamd1:klee")
	v, next, err := DecodeAt(buf, 3)
	require.NoError(t, err)
	b, _ := v.Bytes()
	assert.Equal(t, []byte("spam"), b)
	assert.Equal(t, 9, next)

	v, next, err = DecodeAt(buf, next)
	require.NoError(t, err)
	assert.Equal(t, KindDict, v.Kind())
	assert.Equal(t, len(buf), next)
	assert.Equal(t, []byte("d1:klee"), v.Raw())
}

func TestRawSpanMatchesReferenceDecoder(t *testing.T) {
	// keys deliberately out of order, so a re-encoding would differ
	doc := []byte("d8:announce3:url4:infod6:pieces20:aaaaaaaaaaaaaaaaaaaa4:name4:file12:piece lengthi16384e6:lengthi5ee1:zi0ee")

	var ref struct {
		Info zbencode.RawMessage `bencode:"info"`
	}
	require.NoError(t, zbencode.DecodeBytes(doc, &ref))

	root, err := Decode(doc)
	require.NoError(t, err)
	info, ok := root.Get("info")
	require.True(t, ok)
	assert.Equal(t, []byte(ref.Info), info.Raw())
	assert.Equal(t, []string{"pieces", "name", "piece length", "length"}, info.Keys())
}
