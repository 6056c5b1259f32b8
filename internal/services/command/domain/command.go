// Package domain defines the owner command vocabulary and its parsing
package domain

import (
	"context"
	"strings"
)

// Prefix marks a direct message as a command
const Prefix = "cmd"

// Command names
const (
	IsIgnoreOwner = "is_ignore_owner"
	IsEnablePost  = "is_enable_post"
	Reload        = "reload"
	Ignore        = "ignore"
	Unignore      = "unignore"
	Ignored       = "ignored"
	Save          = "save"
	Friends       = "friends"
	Ping          = "ping"
	Alive         = "alive"
	Host          = "host"
	Status        = "status"
	Kill          = "kill"
	Terminate     = "terminate"
)

// Names lists the vocabulary in help order
var Names = []string{
	IsIgnoreOwner, IsEnablePost, Reload, Ignore, Unignore, Ignored, Save,
	Friends, Ping, Alive, Host, Status, Kill, Terminate,
}

// Known reports whether name is in the vocabulary
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Command is one parsed invocation
type Command struct {
	Name string   `json:"command" validate:"required,cmdname"`
	Args []string `json:"args"    validate:"max=4,dive,max=64"`
}

// IsCommand reports whether a direct message starts with the command prefix
func IsCommand(text string) bool {
	f := strings.Fields(text)
	return len(f) > 0 && strings.EqualFold(f[0], Prefix)
}

// Parse reads "cmd name args..." or, from the console, "name args..."
func Parse(line string) (Command, bool) {
	f := strings.Fields(line)
	if len(f) > 0 && strings.EqualFold(f[0], Prefix) {
		f = f[1:]
	}
	if len(f) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(f[0]), Args: f[1:]}, true
}

// Result is the confirmation of one command; Message goes to the log and, on request, to the owner
type Result struct {
	Command   string `json:"command"`
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	Terminate bool   `json:"terminate,omitempty"`
}

// ExecutorPort runs commands from any surface
type ExecutorPort interface {
	Execute(ctx context.Context, name string, args []string, replyToOwner bool) Result
}
