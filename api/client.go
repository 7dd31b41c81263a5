package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/gene2phenotype/g2ptools/network"
)

// Client talks to the G2P REST service. Write endpoints require a logged-in
// session, the cookie jar keeps the session alive across calls.
type Client struct {
	*http.Client
	baseURL string
	headers map[string]string
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar for new client: %s", err)
	}

	client := &Client{
		Client:  new(http.Client),
		baseURL: baseURL,
	}
	client.Jar = jar
	client.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	return client, nil
}

// SetHeaders updates default headers used by all request.
func (c *Client) SetHeaders(headers map[string]string) {
	result := map[string]string{}
	for k, v := range headers {
		result[k] = v
	}
	c.headers = result
}

// Do sends a new request with given method to an endpoint path under the
// service base URL.
func (c *Client) Do(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %s", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	resp, err := c.Client.Do(req)
	return resp, err
}

// doJSON sends a JSON payload and decodes the JSON response body into `out`
// when `out` is not nil. Status codes other than `wantStatus` are an error.
func (c *Client) doJSON(method, path string, payload, out any, wantStatus int) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload for %s: %s", path, err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.Do(method, path, body)
	if err != nil {
		return fmt.Errorf("request to %s failed: %s", path, err)
	}
	defer resp.Body.Close()

	data, err := network.DecompressResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response of %s: %s", path, err)
	}

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, string(data))
	}

	if out != nil {
		err = json.Unmarshal(data, out)
		if err != nil {
			return fmt.Errorf("failed to decode response of %s: %s", path, err)
		}
	}

	return nil
}

// Login starts an authenticated session. All later write calls reuse the
// session cookie.
func (c *Client) Login(username, password string) error {
	payload := map[string]string{
		"username": username,
		"password": password,
	}
	return c.doJSON("POST", "login/", payload, nil, http.StatusOK)
}

// Logout ends the current session.
func (c *Client) Logout() error {
	return c.doJSON("POST", "logout/", nil, nil, http.StatusNoContent)
}
