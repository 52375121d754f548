package century

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the request signature: the params are serialized as
// "k=v&k=v" with keys in ascending order, the salt is appended, and the
// whole string is MD5-hashed to lowercase hex.
func Sign(params map[string]string, salt string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}

	sum := md5.Sum([]byte(strings.Join(parts, "&") + salt))
	return hex.EncodeToString(sum[:])
}

// VerifySign checks a signature produced by Sign.
func VerifySign(params map[string]string, sign, salt string) bool {
	return Sign(params, salt) == sign
}
