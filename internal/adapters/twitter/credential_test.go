package twitter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kit "meitanbot/internal/platform/testkit"
)

func asStatus(err error, se **StatusError) bool { return errors.As(err, se) }

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	path := kit.WriteFile(t, dir, "credential.yaml", `
consumer_key: ck
consumer_secret: cs
access_token: at
access_token_secret: as
`)
	c, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if c.ConsumerKey != "ck" || c.AccessTokenSecret != "as" {
		t.Fatalf("creds = %+v", c)
	}
}

func TestLoadCredentials_Missing(t *testing.T) {
	dir := t.TempDir()
	path := kit.WriteFile(t, dir, "credential.yaml", "consumer_key: ck\n")
	_, err := LoadCredentials(path)
	if err == nil {
		t.Fatalf("want error for incomplete credentials")
	}
	kit.MustContain(t, err.Error(), "consumer_secret")

	if _, err := LoadCredentials(dir + "/nope.yaml"); err == nil {
		t.Fatalf("want error for missing file")
	}
}

func TestHTTPClient_SignsRequests(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := Credentials{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessTokenSecret: "as"}
	resp, err := c.HTTPClient(srv.Client()).Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if !strings.HasPrefix(auth, "OAuth ") {
		t.Fatalf("authorization = %q", auth)
	}
	kit.MustContain(t, auth, `oauth_consumer_key="ck"`)
	kit.MustContain(t, auth, `oauth_token="at"`)
}
