package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "meitanbot/internal/platform/errors"
)

type commandIn struct {
	Name string   `json:"name" validate:"required,cmdname"`
	Args []string `json:"args" validate:"max=4"`
}

func req(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/v1/commands", strings.NewReader(body))
}

func TestParseJSON_OK(t *testing.T) {
	in, err := ParseJSON[commandIn](req(`{"name":"is_ignore_owner","args":["true"]}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if in.Name != "is_ignore_owner" || len(in.Args) != 1 || in.Args[0] != "true" {
		t.Fatalf("unexpected payload: %+v", in)
	}
}

func TestParseJSON_Failures(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		code  perr.ErrorCode
		field string
	}{
		{"empty", ``, perr.ErrorCodeJSON, ""},
		{"malformed", `{"name":`, perr.ErrorCodeJSON, ""},
		{"unknown field", `{"name":"ping","extra":1}`, perr.ErrorCodeJSON, ""},
		{"trailing", `{"name":"ping"} {"name":"ping"}`, perr.ErrorCodeJSON, ""},
		{"missing name", `{"args":[]}`, perr.ErrorCodeValidation, "name"},
		{"bad name", `{"name":"Rm -rf"}`, perr.ErrorCodeValidation, "name"},
		{"too many args", `{"name":"ping","args":["a","b","c","d","e"]}`, perr.ErrorCodeValidation, "args"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseJSON[commandIn](req(c.body))
			if !perr.IsCode(err, c.code) {
				t.Fatalf("code = %v, want %v (err=%v)", perr.CodeOf(err), c.code, err)
			}
			if c.field != "" {
				e, _ := perr.As(err)
				if e.Field() != c.field {
					t.Fatalf("field = %q, want %q", e.Field(), c.field)
				}
			}
		})
	}
}

func TestValidationMessages_UseJSONNames(t *testing.T) {
	err := Struct(commandIn{Name: "ping", Args: []string{"1", "2", "3", "4", "5"}})
	if err == nil || !strings.Contains(err.Error(), "args must be at most 4") {
		t.Fatalf("unexpected message: %v", err)
	}
	_, msg := ValidationFieldAndMessage(Struct(commandIn{Name: "BAD"}))
	if !strings.Contains(msg, "name must be a lower-case command name") {
		t.Fatalf("unexpected cmdname message: %q", msg)
	}
}
