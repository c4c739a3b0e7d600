// Package restclient builds the resty clients shared by every provider.
package restclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// BrowserUserAgent is sent to endpoints that reject non-browser clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// New returns a client rooted at baseURL. A zero timeout means 10s.
func New(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "askbot/1.0")
	return client
}
