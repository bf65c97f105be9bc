package cache

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"sort"

	"github.com/goccy/go-json"
)

// Key derives a deterministic key from a namespace and any JSON-encodable
// parameters. Map keys are encoded in sorted order, so equal maps hash equally.
func Key(namespace string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", namespace, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", namespace, hash[:16])
}

// QueryKey derives a key from a request path and its query string. Keys and
// repeated values are sorted so parameter order does not matter.
func QueryKey(namespace, path string, query url.Values) string {
	normalized := make(url.Values, len(query))
	for k, vs := range query {
		sorted := append([]string(nil), vs...)
		sort.Strings(sorted)
		normalized[k] = sorted
	}
	return Key(namespace, path+"?"+normalized.Encode())
}
