package bencode

import (
	"fmt"

	"github.com/elliotchance/orderedmap"
)

type Kind uint8

const (
	KindInteger Kind = iota + 1
	KindString
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "byte string"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one decoded bencode node. It remembers where in the source buffer
// its encoding starts and ends, so Raw can hand back the original bytes.
type Value struct {
	kind    Kind
	integer int64
	str     []byte
	list    []*Value
	dict    *orderedmap.OrderedMap

	src        []byte
	start, end int
}

func (v *Value) Kind() Kind {
	return v.kind
}

func (v *Value) Int() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.integer, true
}

// Bytes returns the payload of a byte string. The slice aliases the source buffer.
func (v *Value) Bytes() ([]byte, bool) {
	if v.kind != KindString {
		return nil, false
	}
	return v.str, true
}

func (v *Value) List() ([]*Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Get looks up key in a dictionary. It reports false for missing keys and
// for values that are not dictionaries.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	item, ok := v.dict.Get(key)
	if !ok {
		return nil, false
	}
	return item.(*Value), true
}

// Keys returns dictionary keys in the order they were first encountered.
func (v *Value) Keys() []string {
	if v.kind != KindDict {
		return nil
	}
	keys := make([]string, 0, v.dict.Len())
	for _, k := range v.dict.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

// Len is the element count of a list or dictionary, or the payload length of a byte string.
func (v *Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.str)
	case KindList:
		return len(v.list)
	case KindDict:
		return v.dict.Len()
	default:
		return 0
	}
}

// Raw is the exact slice of the source buffer this value was decoded from,
// delimiters included.
func (v *Value) Raw() []byte {
	return v.src[v.start:v.end:v.end]
}

// Span returns the [start, end) offsets of the value within the source buffer.
func (v *Value) Span() (int, int) {
	return v.start, v.end
}

func (v *Value) String() string {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("i%de", v.integer)
	case KindString:
		return fmt.Sprintf("%d:%q", len(v.str), v.str)
	default:
		return fmt.Sprintf("%s[%d]@%d", v.kind, v.Len(), v.start)
	}
}
