// Package classify turns a post into zero or more intents
// Classify is a priority ordered decision list; it reads a runtime snapshot and never mutates anything
package classify

import (
	"strings"

	"meitanbot/internal/core/event"
	"meitanbot/internal/core/intent"
	"meitanbot/internal/core/normalize"
	"meitanbot/internal/core/rulepack"
	"meitanbot/internal/core/runtimecfg"
)

// Ignore reasons, surfaced in logs
const (
	ReasonIgnored = "author in ignore list"
	ReasonRetweet = "retweet"
	ReasonOwner   = "owner ignored"
	ReasonNoMatch = "no rule matched"
)

// chatter rules are independent of each other and gated on the post not being a reply to someone else
var chatter = []struct {
	rule string
	kind intent.Kind
}{
	{"morning", intent.ReplyMorning},
	{"sleeping", intent.ReplySleeping},
	{"departure", intent.ReplyDeparture},
	{"returning", intent.ReplyReturning},
}

// Classifier holds the compiled pack
type Classifier struct {
	p *rulepack.Pack
}

// New builds a Classifier over p
func New(p *rulepack.Pack) *Classifier { return &Classifier{p: p} }

// Pack exposes the compiled rules for template rendering
func (c *Classifier) Pack() *rulepack.Pack { return c.p }

// Classify evaluates post against the decision list
// the result is never empty: when nothing is actionable it holds a single Ignore with a reason
func (c *Classifier) Classify(post event.Post, cfg *runtimecfg.Snapshot) []intent.Intent {
	// 1 ignore list, which always holds the bot itself
	if cfg.Ignored(post.Author.ID) {
		return []intent.Intent{intent.Ignored(post, ReasonIgnored)}
	}
	// 2 reshares never get replies
	if post.Retweet {
		return []intent.Intent{intent.Ignored(post, ReasonRetweet)}
	}

	text := normalize.Fold(post.Text)
	var out []intent.Intent

	// 3 owner hashtag retweet is emitted alongside whatever follows
	owner := cfg.IsOwner(post.Author.ID)
	if owner && c.p.HasHashtag(text, "retweet") {
		out = append(out, intent.New(post, intent.Retweet))
	}

	// 4 structured commands short circuit everything else
	if in, ok := c.structured(post, text); ok {
		return append(out, in)
	}

	// 5 owner chatter is dropped while ignoreOwner is set
	if owner && cfg.IgnoreOwner {
		return orIgnore(out, post, ReasonOwner)
	}

	// 6 free text rules
	return orIgnore(append(out, c.freeText(post, text)...), post, ReasonNoMatch)
}

func orIgnore(out []intent.Intent, post event.Post, reason string) []intent.Intent {
	if len(out) == 0 {
		return []intent.Intent{intent.Ignored(post, reason)}
	}
	return out
}

// structured tries each anchored command pattern in pack order
// an out of range value rejects that pattern and lets later ones try
func (c *Classifier) structured(post event.Post, text string) (intent.Intent, bool) {
	for _, s := range c.p.Structured {
		m := s.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, ok := structuredValue(s, m[1])
		if !ok {
			continue
		}
		var (
			in  intent.Intent
			err error
		)
		switch s.Intent {
		case "weather":
			in, err = intent.Weather(post, v)
		case "timetable":
			in, err = intent.Timetable(post, v)
		default:
			continue
		}
		if err != nil {
			continue
		}
		return in, true
	}
	return intent.Intent{}, false
}

func structuredValue(s rulepack.Structured, capture string) (int, bool) {
	if s.Numeral {
		return normalize.Numeral(capture)
	}
	v, ok := s.Values[strings.ToLower(capture)]
	return v, ok
}

func (c *Classifier) freeText(post event.Post, text string) []intent.Intent {
	switch {
	case c.p.Rule("meitan").MatchString(text) || c.p.HasHashtag(text, "meitan"):
		return []intent.Intent{intent.New(post, intent.ReplyMeitan)}
	case c.p.Rule("mention").MatchString(text):
		return []intent.Intent{intent.New(post, intent.ReplyMention)}
	case c.p.Rule("csharp").MatchString(text):
		return []intent.Intent{intent.New(post, intent.ReplyCSharp)}
	}
	if m := c.p.Rule("metaphor").FindStringSubmatch(text); m != nil && m[1] != "" {
		return []intent.Intent{intent.Metaphor(post, m[1])}
	}

	var out []intent.Intent
	if !c.thirdPartyReply(text) {
		for _, ch := range chatter {
			if c.p.Rule(ch.rule).MatchString(text) {
				out = append(out, intent.New(post, ch.kind))
			}
		}
	}
	if len(out) == 0 && c.p.Rule("nullpo").MatchString(text) {
		out = append(out, intent.New(post, intent.ReplyNullpo))
	}
	return out
}

func (c *Classifier) thirdPartyReply(text string) bool {
	g := c.p.Gate("third_party_reply")
	return g != nil && g.MatchString(text)
}
