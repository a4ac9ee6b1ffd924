package internal

import "sync"

// Credentials holds the API key, secret, callback URL, access token and the
// signed-header flag. Every stage of a call reads from it; setters may be used
// from any goroutine.
type Credentials struct {
	mu           sync.RWMutex
	apiKey       string
	apiSecret    string
	apiCallback  string
	accessToken  string
	signedHeader bool
}

// NewCredentials returns a store seeded with the application credentials.
func NewCredentials(apiKey, apiSecret, apiCallback string) *Credentials {
	return &Credentials{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		apiCallback: apiCallback,
	}
}

func (c *Credentials) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

func (c *Credentials) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

func (c *Credentials) APISecret() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiSecret
}

func (c *Credentials) SetAPISecret(secret string) {
	c.mu.Lock()
	c.apiSecret = secret
	c.mu.Unlock()
}

func (c *Credentials) APICallback() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiCallback
}

func (c *Credentials) SetAPICallback(callback string) {
	c.mu.Lock()
	c.apiCallback = callback
	c.mu.Unlock()
}

func (c *Credentials) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Credentials) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Credentials) SignedHeader() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.signedHeader
}

func (c *Credentials) SetSignedHeader(enabled bool) {
	c.mu.Lock()
	c.signedHeader = enabled
	c.mu.Unlock()
}
