package decoder

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"testing"

	bencodego "github.com/jackpal/bencode-go"
	"github.com/stretchr/testify/require"
)

// pieces returns n fake piece hashes of 20 bytes each.
func pieces(n int) string {
	return strings.Repeat("0123456789abcdefghij", n)
}

func singleFileInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":         "file.iso",
		"piece length": 16384,
		"length":       40000,
		"pieces":       pieces(3),
	}
}

func multiFileInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":         "dir",
		"piece length": 16384,
		"pieces":       pieces(2),
		"files": []interface{}{
			map[string]interface{}{"length": 3, "path": []interface{}{"a", "a.txt"}},
			map[string]interface{}{"length": 4, "path": []interface{}{"b.txt"}, "md5sum": "d41d8cd98f00b204e9800998ecf8427e"},
		},
	}
}

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bencodego.Marshal(&buf, v))
	return buf.Bytes()
}

func infoHash(t *testing.T, info map[string]interface{}) string {
	t.Helper()
	sum := sha1.Sum(encode(t, info))
	return hex.EncodeToString(sum[:])
}
