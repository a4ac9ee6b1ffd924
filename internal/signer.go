package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// AuthQuery builds the implicit authentication fragment appended to every
// authenticated resource URL.
func AuthQuery(accessToken, clientID string) string {
	return "access_token=" + url.QueryEscape(accessToken) + "&client_id=" + url.QueryEscape(clientID)
}

// Sign computes the enforced-signed-request signature for an endpoint.
//
// The first key=value pair of authQuery (the access token) joins the call
// params, the pairs are sorted by key and appended to "/"+endpoint as
// "|key=value", and the result is signed with HMAC-SHA256 keyed by the API
// secret. The digest is returned as lowercase hex. Nil params are skipped,
// matching what actually goes on the wire.
func Sign(secret, endpoint, authQuery string, params Params) string {
	pairs := make(map[string]string, len(params)+1)
	for key, raw := range params {
		if value, ok := FormatValue(raw); ok {
			pairs[key] = value
		}
	}

	if key, value, ok := firstPair(authQuery); ok {
		pairs[key] = value
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var base strings.Builder
	base.WriteString("/")
	base.WriteString(endpoint)
	for _, key := range keys {
		base.WriteString("|")
		base.WriteString(key)
		base.WriteString("=")
		base.WriteString(pairs[key])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(base.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// firstPair extracts the first key=value pair of a query fragment, with the
// value unescaped. A leading "?" is ignored.
func firstPair(query string) (string, string, bool) {
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return "", "", false
	}

	pair, _, _ := strings.Cut(query, "&")
	key, value, found := strings.Cut(pair, "=")
	if !found || key == "" {
		return "", "", false
	}

	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	return key, value, true
}
