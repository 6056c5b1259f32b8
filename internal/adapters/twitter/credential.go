package twitter

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dghubble/oauth1"
	"gopkg.in/yaml.v3"
)

// Credentials are the OAuth 1.0a keys read from credential.yaml
type Credentials struct {
	ConsumerKey       string `yaml:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret"`
	AccessToken       string `yaml:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret"`
}

// LoadCredentials reads and validates the yaml credential file
func LoadCredentials(path string) (Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("twitter: read credentials: %w", err)
	}
	var c Credentials
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("twitter: parse credentials: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// Validate reports the first missing key
func (c Credentials) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"consumer_key", c.ConsumerKey},
		{"consumer_secret", c.ConsumerSecret},
		{"access_token", c.AccessToken},
		{"access_token_secret", c.AccessTokenSecret},
	} {
		if strings.TrimSpace(f.v) == "" {
			return fmt.Errorf("twitter: credential %s is empty", f.name)
		}
	}
	return nil
}

// HTTPClient returns a client that signs every request; base supplies the transport
// the returned client has no timeout so it also serves the long lived stream
func (c Credentials) HTTPClient(base *http.Client) *http.Client {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
	}
	cfg := oauth1.NewConfig(c.ConsumerKey, c.ConsumerSecret)
	return cfg.Client(ctx, oauth1.NewToken(c.AccessToken, c.AccessTokenSecret))
}
