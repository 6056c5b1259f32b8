// Package rulepack loads and compiles the classifier patterns from the embedded rules.json
// It expands {SLOT} placeholders, compiles regexes and exposes reply templates
package rulepack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

//go:embed rules.json
var embedded []byte

// rule names the classifier asks for; a pack missing any of them is rejected
var requiredRules = []string{
	"meitan", "mention", "csharp", "metaphor",
	"morning", "sleeping", "departure", "returning", "nullpo",
}

type rawStructured struct {
	ID       string         `json:"id"`
	Intent   string         `json:"intent"`
	Pattern  string         `json:"pattern"`
	Values   map[string]int `json:"values,omitempty"`
	Numeral  bool           `json:"numeral,omitempty"`
	Examples []string       `json:"examples,omitempty"`
}

type rawPack struct {
	Version    int                 `json:"version"`
	Meta       map[string]any      `json:"meta"`
	Slots      []string            `json:"slots"`
	Hashtags   map[string][]string `json:"hashtags"`
	Gates      map[string]string   `json:"gates"`
	Structured []rawStructured     `json:"structured"`
	Rules      map[string]string   `json:"rules"`
	Templates  map[string]string   `json:"templates"`
	Days       []string            `json:"days"`
	Timetable  map[string]string   `json:"timetable"`
}

// Structured is an anchored command pattern with one capture group
// the capture maps to an int through Values, or through a numeral reader when Numeral is set
type Structured struct {
	ID       string
	Intent   string
	Re       *regexp.Regexp
	Values   map[string]int
	Numeral  bool
	Examples []string
}

// Pack is a compiled rule pack
type Pack struct {
	Version int
	Meta    map[string]any

	Structured []Structured
	Rules      map[string]*regexp.Regexp
	Gates      map[string]*regexp.Regexp

	// Hashtags are lowercased, keyed by purpose ("retweet", "meitan")
	Hashtags map[string][]string

	Templates map[string]string
	Days      []string
	Timetable map[int]string
}

// Load compiles the embedded pack with the given slot values
func Load(slots map[string]string) (*Pack, error) { return Parse(embedded, slots) }

// LoadFile compiles a pack from disk, used when BOT_RULES_FILE overrides the embedded one
func LoadFile(path string, slots map[string]string) (*Pack, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rulepack: read %s: %w", path, err)
	}
	return Parse(b, slots)
}

// Parse compiles a pack from raw json
func Parse(data []byte, slots map[string]string) (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("rulepack: parse rules.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("rulepack: unsupported rules.json version %d (want 1)", rp.Version)
	}
	for _, s := range rp.Slots {
		if strings.TrimSpace(slots[s]) == "" {
			return nil, fmt.Errorf("rulepack: slot %s has no value", s)
		}
	}

	p := &Pack{
		Version:   rp.Version,
		Meta:      rp.Meta,
		Rules:     make(map[string]*regexp.Regexp, len(rp.Rules)),
		Gates:     make(map[string]*regexp.Regexp, len(rp.Gates)),
		Hashtags:  make(map[string][]string, len(rp.Hashtags)),
		Templates: rp.Templates,
		Days:      rp.Days,
		Timetable: make(map[int]string, len(rp.Timetable)),
	}

	compile := func(name, pattern string) (*regexp.Regexp, error) {
		re, err := regexp.Compile(expandSlots(pattern, slots))
		if err != nil {
			return nil, fmt.Errorf("rulepack: compile %s: %w", name, err)
		}
		return re, nil
	}

	for name, pat := range rp.Rules {
		re, err := compile(name, pat)
		if err != nil {
			return nil, err
		}
		p.Rules[name] = re
	}
	for _, name := range requiredRules {
		if p.Rules[name] == nil {
			return nil, fmt.Errorf("rulepack: missing rule %q", name)
		}
	}
	for name, pat := range rp.Gates {
		re, err := compile(name, pat)
		if err != nil {
			return nil, err
		}
		p.Gates[name] = re
	}

	for _, s := range rp.Structured {
		re, err := compile(s.ID, s.Pattern)
		if err != nil {
			return nil, err
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("rulepack: structured %s needs a capture group", s.ID)
		}
		if !s.Numeral && len(s.Values) == 0 {
			return nil, fmt.Errorf("rulepack: structured %s has neither values nor numeral", s.ID)
		}
		vals := make(map[string]int, len(s.Values))
		for k, v := range s.Values {
			vals[strings.ToLower(k)] = v
		}
		p.Structured = append(p.Structured, Structured{
			ID: s.ID, Intent: s.Intent, Re: re, Values: vals, Numeral: s.Numeral, Examples: s.Examples,
		})
	}

	for purpose, tags := range rp.Hashtags {
		for _, t := range tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				p.Hashtags[purpose] = append(p.Hashtags[purpose], t)
			}
		}
	}

	for k, v := range rp.Timetable {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("rulepack: timetable key %q: %w", k, err)
		}
		p.Timetable[n] = v
	}
	return p, nil
}

// Rule returns the compiled rule by name, nil if absent
func (p *Pack) Rule(name string) *regexp.Regexp { return p.Rules[name] }

// Gate returns the compiled gate by name, nil if absent
func (p *Pack) Gate(name string) *regexp.Regexp { return p.Gates[name] }

// HasHashtag reports whether text carries one of the hashtags registered for purpose
// tags match whole whitespace separated tokens, ASCII case-insensitively
func (p *Pack) HasHashtag(text, purpose string) bool {
	tags := p.Hashtags[purpose]
	if len(tags) == 0 {
		return false
	}
	for _, tok := range strings.Fields(text) {
		tok = strings.ToLower(tok)
		for _, t := range tags {
			if tok == t {
				return true
			}
		}
	}
	return false
}

// Render fills {key} placeholders in the named template
// unknown keys are left literal so missing data shows up in the post
func (p *Pack) Render(name string, vars map[string]string) (string, error) {
	tmpl, ok := p.Templates[name]
	if !ok {
		return "", fmt.Errorf("rulepack: unknown template %q", name)
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}

// Day names aheadDays for replies, falling back to "+N"
func (p *Pack) Day(ahead int) string {
	if ahead >= 0 && ahead < len(p.Days) {
		return p.Days[ahead]
	}
	return "+" + strconv.Itoa(ahead)
}

// expandSlots replaces {NAME} with a case-insensitive quoted literal
// Unknown {NAME} leaves the token literally (debug-friendly)
func expandSlots(pattern string, slots map[string]string) string {
	out := pattern
	from := 0
	for {
		i := strings.Index(out[from:], "{")
		if i < 0 {
			return out
		}
		i += from
		j := strings.Index(out[i:], "}")
		if j < 0 {
			return out
		}
		j += i
		name := out[i+1 : j]
		v, ok := slots[name]
		if !ok || v == "" {
			from = j + 1
			continue
		}
		group := "(?i:" + regexp.QuoteMeta(v) + ")"
		out = out[:i] + group + out[j+1:]
		from = i + len(group)
	}
}
