package bencode

import (
	"fmt"
	"strconv"

	"github.com/elliotchance/orderedmap"
)

// MaxDepth bounds list/dictionary nesting.
const MaxDepth = 512

type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: syntax error at offset %d: %s", e.Offset, e.Msg)
}

func syntaxErrorf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Decode decodes buf as exactly one bencoded value. Trailing bytes are an error.
func Decode(buf []byte) (*Value, error) {
	v, next, err := DecodeAt(buf, 0)
	if err != nil {
		return nil, err
	}
	if next != len(buf) {
		return nil, syntaxErrorf(next, "unexpected trailing data (%d bytes)", len(buf)-next)
	}
	return v, nil
}

// DecodeAt decodes one value starting at pos and returns the offset just past it.
//
// Dictionaries may hold keys in any order. When a key repeats, the last value
// wins and the key keeps the position where it first appeared.
func DecodeAt(buf []byte, pos int) (*Value, int, error) {
	d := decodeState{buf: buf}
	v, err := d.value(pos, 0)
	if err != nil {
		return nil, 0, err
	}
	return v, v.end, nil
}

type decodeState struct {
	buf []byte
}

func (d *decodeState) value(pos, depth int) (*Value, error) {
	if pos < 0 {
		return nil, syntaxErrorf(pos, "negative offset")
	}
	if pos >= len(d.buf) {
		return nil, syntaxErrorf(pos, "unexpected end of input, expected a value")
	}
	switch c := d.buf[pos]; {
	case c == 'i':
		return d.integer(pos)
	case c >= '0' && c <= '9':
		return d.str(pos)
	case c == 'l':
		return d.list(pos, depth)
	case c == 'd':
		return d.dict(pos, depth)
	default:
		return nil, syntaxErrorf(pos, "unexpected byte %q, expected 'i', 'l', 'd' or a digit", c)
	}
}

func (d *decodeState) integer(pos int) (*Value, error) {
	begin := pos + 1
	i := begin
	for i < len(d.buf) && d.buf[i] != 'e' {
		i++
	}
	if i >= len(d.buf) {
		return nil, syntaxErrorf(pos, "unterminated integer")
	}
	digits := d.buf[begin:i]
	if err := checkInteger(digits); err != "" {
		return nil, syntaxErrorf(begin, "malformed integer %q: %s", digits, err)
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return nil, syntaxErrorf(begin, "integer %q out of range", digits)
	}
	return &Value{kind: KindInteger, integer: n, src: d.buf, start: pos, end: i + 1}, nil
}

func checkInteger(digits []byte) string {
	if len(digits) == 0 {
		return "empty"
	}
	body := digits
	if body[0] == '-' {
		body = body[1:]
		if len(body) == 0 {
			return "sign without digits"
		}
		if body[0] == '0' {
			return "negative zero or leading zero"
		}
	}
	for _, c := range body {
		if c < '0' || c > '9' {
			return "non-digit character"
		}
	}
	if len(body) > 1 && body[0] == '0' {
		return "leading zero"
	}
	return ""
}

func (d *decodeState) str(pos int) (*Value, error) {
	i := pos
	for i < len(d.buf) && d.buf[i] >= '0' && d.buf[i] <= '9' {
		i++
	}
	if i >= len(d.buf) {
		return nil, syntaxErrorf(pos, "unexpected end of input in byte string length")
	}
	if d.buf[i] != ':' {
		return nil, syntaxErrorf(i, "malformed byte string length, expected ':' but found %q", d.buf[i])
	}
	digits := d.buf[pos:i]
	if len(digits) > 1 && digits[0] == '0' {
		return nil, syntaxErrorf(pos, "byte string length %q has a leading zero", digits)
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return nil, syntaxErrorf(pos, "byte string length %q out of range", digits)
	}
	begin := i + 1
	if n > int64(len(d.buf)-begin) {
		return nil, syntaxErrorf(begin, "truncated byte string: need %d bytes, have %d", n, len(d.buf)-begin)
	}
	end := begin + int(n)
	return &Value{kind: KindString, str: d.buf[begin:end:end], src: d.buf, start: pos, end: end}, nil
}

func (d *decodeState) list(pos, depth int) (*Value, error) {
	if depth >= MaxDepth {
		return nil, syntaxErrorf(pos, "nesting deeper than %d", MaxDepth)
	}
	items := make([]*Value, 0)
	i := pos + 1
	for {
		if i >= len(d.buf) {
			return nil, syntaxErrorf(pos, "unterminated list")
		}
		if d.buf[i] == 'e' {
			break
		}
		item, err := d.value(i, depth+1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		i = item.end
	}
	return &Value{kind: KindList, list: items, src: d.buf, start: pos, end: i + 1}, nil
}

func (d *decodeState) dict(pos, depth int) (*Value, error) {
	if depth >= MaxDepth {
		return nil, syntaxErrorf(pos, "nesting deeper than %d", MaxDepth)
	}
	m := orderedmap.NewOrderedMap()
	i := pos + 1
	for {
		if i >= len(d.buf) {
			return nil, syntaxErrorf(pos, "unterminated dictionary")
		}
		if d.buf[i] == 'e' {
			break
		}
		if c := d.buf[i]; c < '0' || c > '9' {
			return nil, syntaxErrorf(i, "dictionary key must be a byte string, found %q", c)
		}
		key, err := d.str(i)
		if err != nil {
			return nil, err
		}
		item, err := d.value(key.end, depth+1)
		if err != nil {
			return nil, err
		}
		m.Set(string(key.str), item)
		i = item.end
	}
	return &Value{kind: KindDict, dict: m, src: d.buf, start: pos, end: i + 1}, nil
}
