package eval

import (
	"math/rand"
	"strings"
)

// TimeInfo describes the wall-clock moment of the triggering event,
// exposed to expressions as the "time" namespace.
type TimeInfo struct {
	Hour    int    // 0-23
	Minute  int    // 0-59
	Weekday string // "Monday" .. "Sunday"
	IsDay   bool   // 07:00-22:59 by the caller's convention
	IsNight bool
}

// ChannelInfo describes the channel the event arrived on, exposed as the
// "channel" namespace.
type ChannelInfo struct {
	Name  string
	Topic string
	NSFW  bool
}

// ServerInfo describes the server (guild), exposed as the "server"
// namespace.
type ServerInfo struct {
	ID   string
	Name string
}

// MessagesFunc renders recent message history. n is how many messages,
// format is a caller-defined template name, filter restricts by author
// ("" for all). Supplied by the chat-event collaborator.
type MessagesFunc func(n int, format, filter string) string

// Context is the read-only bag of values and callables an expression
// evaluates against. It is constructed fresh per evaluation, has no
// identity beyond the call, and is never mutated by the evaluator.
type Context struct {
	// Event flags.
	Mentioned bool // the entity was mentioned in the message
	Replied   bool // the message replies to the entity
	IsForward bool // the message is a forward
	IsSelf    bool // the message was authored by the entity itself

	// Timing, in milliseconds.
	DtMs      float64 // since the entity last responded
	ElapsedMs float64 // since the triggering event

	// Text values.
	Content string // message content
	Author  string // message author display name
	Name    string // the entity's own name

	// Chars is the ordered list of entity names bound to the channel.
	Chars []string

	// Namespaces.
	Time    TimeInfo
	Channel ChannelInfo
	Server  ServerInfo

	// Self holds arbitrary key-value pairs sourced from "key: value"
	// facts. Missing keys read as "".
	Self map[string]string

	// Facts is the entity's plain fact snapshot, searched by has_fact.
	Facts []string

	// Messages renders message history for messages(n, format, filter).
	// When nil the function returns "".
	Messages MessagesFunc

	// Rand is the random source for random() and roll(). When nil the
	// shared global source is used; tests inject a seeded source for
	// determinism.
	Rand *rand.Rand
}

// Lookup resolves a bare identifier against the context. The second
// return value reports whether the name is known.
func (c *Context) Lookup(name string) (any, bool) {
	switch name {
	case "mentioned":
		return c.Mentioned, true
	case "replied":
		return c.Replied, true
	case "is_forward":
		return c.IsForward, true
	case "is_self":
		return c.IsSelf, true
	case "dt_ms":
		return c.DtMs, true
	case "elapsed_ms":
		return c.ElapsedMs, true
	case "content":
		return c.Content, true
	case "author":
		return c.Author, true
	case "name":
		return c.Name, true
	case "chars":
		return c.Chars, true
	case "time":
		return c.Time, true
	case "channel":
		return c.Channel, true
	case "server":
		return c.Server, true
	case "self":
		return c.selfMap(), true
	}
	return nil, false
}

func (c *Context) selfMap() map[string]string {
	if c.Self == nil {
		return map[string]string{}
	}
	return c.Self
}

func (c *Context) intn(n int) int {
	if c.Rand != nil {
		return c.Rand.Intn(n)
	}
	return rand.Intn(n)
}

func (c *Context) float64n() float64 {
	if c.Rand != nil {
		return c.Rand.Float64()
	}
	return rand.Float64()
}

// hasFact reports whether any plain fact contains s, case-insensitively.
// This is a substring search, not a regex, so the regex surface stays
// confined to the validator-gated string methods.
func (c *Context) hasFact(s string) bool {
	needle := strings.ToLower(s)
	for _, f := range c.Facts {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
