// Package domain holds the admin API payloads
package domain

import (
	"time"

	cmddomain "meitanbot/internal/services/command/domain"
	streamdomain "meitanbot/internal/services/stream/domain"
)

// CommandRequest is the POST /commands body
type CommandRequest struct {
	Command      string   `json:"command"        validate:"required,cmdname"`
	Args         []string `json:"args"           validate:"max=4,dive,max=64"`
	ReplyToOwner bool     `json:"reply_to_owner"`
}

// Parsed returns the request as a command
func (r CommandRequest) Parsed() cmddomain.Command {
	return cmddomain.Command{Name: r.Command, Args: r.Args}
}

// RuntimeView is the flag part of the status payload
type RuntimeView struct {
	PostingEnabled bool  `json:"posting_enabled"`
	IgnoreOwner    bool  `json:"ignore_owner"`
	IgnoredCount   int   `json:"ignored_count"`
	SelfID         int64 `json:"self_id,string"`
	OwnerID        int64 `json:"owner_id,string"`
}

// StatusResponse is GET /status
type StatusResponse struct {
	Stream  *streamdomain.Status `json:"stream,omitempty"`
	Runtime RuntimeView          `json:"runtime"`
	Queues  map[string]int       `json:"queues"`
	Modules []string             `json:"modules"`
	Now     time.Time            `json:"now"`
}

// IgnoredResponse is GET /ignored
type IgnoredResponse struct {
	IDs []string `json:"ids"`
}
