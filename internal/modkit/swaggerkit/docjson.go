package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
)

// the admin surface is small enough to describe by hand
var (
	docOnce  sync.Once
	docBytes []byte
)

func envelopeRef() map[string]any {
	return map[string]any{"$ref": "#/components/schemas/Envelope"}
}

func jsonResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{"schema": envelopeRef()},
		},
	}
}

func ensurePath(paths map[string]any, path string) map[string]any {
	if p, ok := paths[path].(map[string]any); ok {
		return p
	}
	p := map[string]any{}
	paths[path] = p
	return p
}

func ensureOp(paths map[string]any, path, method, summary string, secured bool, codes ...int) map[string]any {
	op := map[string]any{
		"summary":   summary,
		"responses": map[string]any{},
	}
	resp := op["responses"].(map[string]any)
	for _, c := range codes {
		resp[strconv.Itoa(c)] = jsonResponse(http.StatusText(c))
	}
	if secured {
		op["security"] = []any{map[string]any{"bearer": []any{}}}
	}
	ensurePath(paths, path)[method] = op
	return op
}

// Document builds the OpenAPI description of the admin API
func Document() map[string]any {
	paths := map[string]any{}
	ensureOp(paths, "/api/v1/status", "get", "Connection state and runtime flags", false, 200)
	ensureOp(paths, "/api/v1/stats", "get", "Current statistics counters", false, 200)
	ensureOp(paths, "/api/v1/stats/latest", "get", "Last persisted statistics snapshot", false, 200, 404, 503)
	cmd := ensureOp(paths, "/api/v1/commands", "post", "Run an owner command", true, 202, 400, 401, 409)
	cmd["requestBody"] = map[string]any{
		"required": true,
		"content": map[string]any{
			"application/json": map[string]any{"schema": map[string]any{"$ref": "#/components/schemas/Command"}},
		},
	}
	ensureOp(paths, "/api/v1/ignored", "get", "List ignored user ids", false, 200)
	ensureOp(paths, "/api/v1/ignored/{id}", "delete", "Remove a user id from the ignore list", true, 200, 401, 404)
	ensureOp(paths, "/api/v1/meta/ready", "get", "Storage readiness", false, 200)
	ensureOp(paths, "/api/v1/meta/version", "get", "Build information", false, 200)
	ensureOp(paths, "/api/v1/meta/service", "get", "Service uptime", false, 200)

	return map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "meitanbot admin", "version": "1"},
		"paths":   paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearer": map[string]any{"type": "http", "scheme": "bearer"},
			},
			"schemas": map[string]any{
				"Envelope": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status_code": map[string]any{"type": "integer"},
						"status":      map[string]any{"type": "string"},
						"code":        map[string]any{"type": "integer"},
						"error":       map[string]any{"type": "string"},
						"request_id":  map[string]any{"type": "string"},
						"data":        map[string]any{},
					},
				},
				"Command": map[string]any{
					"type":     "object",
					"required": []string{"command"},
					"properties": map[string]any{
						"command":        map[string]any{"type": "string"},
						"args":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"reply_to_owner": map[string]any{"type": "boolean"},
					},
				},
			},
		},
	}
}

var docReader = func() []byte {
	docOnce.Do(func() {
		docBytes, _ = json.Marshal(Document())
	})
	return docBytes
}

// serveDocJSON serves the admin OpenAPI document
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(docReader())
	}
}
