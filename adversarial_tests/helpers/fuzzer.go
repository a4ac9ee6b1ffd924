package helpers

import (
	"math/rand"
	"strings"
	"unicode"
)

// Fuzzer generates hostile inputs for the client's argument checks
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a new fuzzer with the given seed
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{rnd: rand.New(rand.NewSource(seed))}
}

// FuzzPathSegment generates IDs, tag names and shortcodes that must never be
// interpolated into a resource path
func (f *Fuzzer) FuzzPathSegment() []string {
	values := []string{
		"",
		".",
		"..",
		"1/relationship",
		"self/media/liked",
		"1?access_token=stolen",
		"1#fragment",
		"%2e%2e",
		"1%2Frelationship",
		"a b",
		"tag\tname",
		"id\r\nX-Evil: 1",
		strings.Repeat("9", 257),
	}
	values = append(values, f.GeneratePathTraversals()...)
	values = append(values, f.GenerateControlCharStrings()...)
	return values
}

// FuzzUserAgent generates malicious User-Agent test cases
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		// Header injection via newlines
		"MyApp/1.0\nX-Evil-Header: injected",
		"MyApp/1.0\rX-Evil-Header: injected",
		"MyApp/1.0\r\nX-Evil-Header: injected",
		"MyApp/1.0\r\nContent-Length: 0\r\n\r\nGET /evil HTTP/1.1",

		// Too long
		strings.Repeat("a", 257),
		strings.Repeat("a", 10000),

		// Control characters
		"MyApp\x00/1.0",
		"MyApp\x1B/1.0",
		"MyApp\x7F/1.0",
	}
}

// FuzzScope generates scope names outside the allow list
func (f *Fuzzer) FuzzScope() []string {
	return []string{
		"",
		"BASIC",
		"basic ",
		"basic+likes",
		"likes&client_id=other",
		"scope\nbasic",
		f.GenerateRandomString(12, true),
	}
}

// FuzzRelationshipAction generates actions the relationship endpoint must refuse
func (f *Fuzzer) FuzzRelationshipAction() []string {
	return []string{
		"",
		"block",
		"unblock",
		"FOLLOW",
		" follow",
		"follow&action=block",
		f.GenerateRandomString(9, false),
	}
}

// GenerateRandomString generates a random string of the given length
func (f *Fuzzer) GenerateRandomString(length int, includeSpecial bool) string {
	const (
		letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		special = "!@#$%^&*()_+-=[]{}|;':\",./<>?`~"
	)

	charset := letters
	if includeSpecial {
		charset += special
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[f.rnd.Intn(len(charset))]
	}
	return string(result)
}

// GenerateControlCharStrings embeds every ASCII control character in an ID
func (f *Fuzzer) GenerateControlCharStrings() []string {
	var results []string
	for i := 0; i < 32; i++ {
		char := rune(i)
		if unicode.IsControl(char) {
			results = append(results, "123"+string(char)+"456")
		}
	}
	return append(results, "123\x7f456")
}

// GeneratePathTraversals generates path traversal attack patterns
func (f *Fuzzer) GeneratePathTraversals() []string {
	return []string{
		"../../etc/passwd",
		"../../../etc/passwd",
		"..\\..\\windows\\system32",
		"..%2F..%2Fetc%2Fpasswd",
		"....//....//etc/passwd",
		"..;/..;/etc/passwd",
		"/etc/passwd",
		"\\windows\\system32",
	}
}
