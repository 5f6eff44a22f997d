package facts

import (
	"strings"
)

// EntryKind identifies how a permission list entry matches a user.
type EntryKind int

const (
	// EntryID matches a numeric user ID exactly.
	EntryID EntryKind = iota

	// EntryName matches a username case-insensitively.
	EntryName

	// EntryRole matches any user carrying the role ID.
	EntryRole
)

// Entry is one member of a permission list: a username, a numeric user
// ID, or a "role:<id>" reference.
type Entry struct {
	Kind  EntryKind
	Value string
}

// List is a parsed permission list: either the everyone sentinel or an
// explicit set of entries.
type List struct {
	Everyone bool
	Entries  []Entry
}

// ParseList parses a comma-separated permission list. Accepted entries:
// the sentinel "@everyone"/"everyone", numeric IDs, "role:<id>", and
// bare usernames.
func ParseList(raw string) *List {
	l := &List{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch {
		case part == "@everyone" || part == "everyone":
			l.Everyone = true
		case strings.HasPrefix(part, "role:"):
			id := strings.TrimSpace(strings.TrimPrefix(part, "role:"))
			if id != "" {
				l.Entries = append(l.Entries, Entry{Kind: EntryRole, Value: id})
			}
		case isDigits(part):
			l.Entries = append(l.Entries, Entry{Kind: EntryID, Value: part})
		default:
			l.Entries = append(l.Entries, Entry{Kind: EntryName, Value: part})
		}
	}
	return l
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Permissions is the derived permission state of an entity. It is never
// persisted as a parsed object; it is rebuilt from the fact set (plus
// optional stored defaults) on every check.
//
// A nil Edit list means owner-only. A nil View list also means
// owner-only: visibility is deny-by-default, and an entity that wants to
// be public states "$view everyone" explicitly. A nil Use list means any
// non-blacklisted user may trigger the entity.
type Permissions struct {
	// OwnerID is the entity owner's user ID. The owner passes every
	// check unconditionally.
	OwnerID string

	Edit      *List
	View      *List
	Use       *List
	Blacklist []Entry

	// Locked restricts editing to the owner regardless of the Edit
	// list. LockMessage is optional display text from the directive.
	Locked      bool
	LockMessage string
}

// ResolvePermissions derives the permission state from an entity's fact
// set merged with its stored defaults. Parsed directives take precedence
// over defaults; blacklists are combined since deny always wins anyway.
// Only top-level directives count: an $if-gated permission directive is
// context-dependent and is ignored for authorization.
func ResolvePermissions(e *Entity) *Permissions {
	p := Classify(e.Facts).Permissions
	p.OwnerID = e.OwnerID

	if d := e.Defaults; d != nil {
		if p.Edit == nil {
			p.Edit = d.Edit
		}
		if p.View == nil {
			p.View = d.View
		}
		if p.Use == nil {
			p.Use = d.Use
		}
		p.Blacklist = append(p.Blacklist, d.Blacklist...)
	}
	return p
}

// IsBlacklisted reports whether the user is denied by the blacklist.
// The owner is never blacklisted; deny overrides any allow list for
// everyone else.
func (p *Permissions) IsBlacklisted(userID, username string, roles []string) bool {
	if p.isOwner(userID) {
		return false
	}
	for _, e := range p.Blacklist {
		if matchEntry(e, userID, username, roles) {
			return true
		}
	}
	return false
}

// CanEdit reports whether the user may edit the entity's facts.
func (p *Permissions) CanEdit(userID, username string, roles []string) bool {
	if p.isOwner(userID) {
		return true
	}
	if p.IsBlacklisted(userID, username, roles) {
		return false
	}
	if p.Locked {
		return false
	}
	return listGrants(p.Edit, false, userID, username, roles)
}

// CanView reports whether the user may view the entity's facts.
func (p *Permissions) CanView(userID, username string, roles []string) bool {
	if p.isOwner(userID) {
		return true
	}
	if p.IsBlacklisted(userID, username, roles) {
		return false
	}
	return listGrants(p.View, false, userID, username, roles)
}

// IsAllowed reports whether the user may trigger the entity.
func (p *Permissions) IsAllowed(userID, username string, roles []string) bool {
	if p.isOwner(userID) {
		return true
	}
	if p.IsBlacklisted(userID, username, roles) {
		return false
	}
	return listGrants(p.Use, true, userID, username, roles)
}

func (p *Permissions) isOwner(userID string) bool {
	return p.OwnerID != "" && userID == p.OwnerID
}

// listGrants evaluates an allow list. A nil list falls back to the
// given default (owner-only for edit/view, open for use).
func listGrants(l *List, nilDefault bool, userID, username string, roles []string) bool {
	if l == nil {
		return nilDefault
	}
	if l.Everyone {
		return true
	}
	for _, e := range l.Entries {
		if matchEntry(e, userID, username, roles) {
			return true
		}
	}
	return false
}

func matchEntry(e Entry, userID, username string, roles []string) bool {
	switch e.Kind {
	case EntryID:
		return e.Value == userID
	case EntryName:
		return strings.EqualFold(e.Value, username)
	case EntryRole:
		for _, r := range roles {
			if r == e.Value {
				return true
			}
		}
	}
	return false
}

// CanEdit resolves the entity's permissions and checks edit access in
// one call. This is the shape command-authorization collaborators use.
func CanEdit(e *Entity, userID, username string, roles []string) bool {
	return ResolvePermissions(e).CanEdit(userID, username, roles)
}

// CanView resolves the entity's permissions and checks view access.
func CanView(e *Entity, userID, username string, roles []string) bool {
	return ResolvePermissions(e).CanView(userID, username, roles)
}

// IsAllowed resolves the entity's permissions and checks trigger access.
func IsAllowed(e *Entity, userID, username string, roles []string) bool {
	return ResolvePermissions(e).IsAllowed(userID, username, roles)
}

// IsBlacklisted resolves the entity's permissions and checks the
// blacklist.
func IsBlacklisted(e *Entity, userID, username string, roles []string) bool {
	return ResolvePermissions(e).IsBlacklisted(userID, username, roles)
}
