package facts

import (
	"testing"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		raw          string
		wantEveryone bool
		wantEntries  []Entry
	}{
		{"@everyone", true, nil},
		{"everyone", true, nil},
		{"alice", false, []Entry{{EntryName, "alice"}}},
		{"12345", false, []Entry{{EntryID, "12345"}}},
		{"role:99", false, []Entry{{EntryRole, "99"}}},
		{"alice, 12345, role:99", false, []Entry{
			{EntryName, "alice"}, {EntryID, "12345"}, {EntryRole, "99"},
		}},
		{"alice,,bob", false, []Entry{{EntryName, "alice"}, {EntryName, "bob"}}},
		{"role:", false, nil},
		{"", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			l := ParseList(tt.raw)
			if l.Everyone != tt.wantEveryone {
				t.Errorf("Everyone = %v, want %v", l.Everyone, tt.wantEveryone)
			}
			if len(l.Entries) != len(tt.wantEntries) {
				t.Fatalf("Entries = %+v, want %+v", l.Entries, tt.wantEntries)
			}
			for i, e := range tt.wantEntries {
				if l.Entries[i] != e {
					t.Errorf("Entries[%d] = %+v, want %+v", i, l.Entries[i], e)
				}
			}
		})
	}
}

func TestPermissions_EditScenario(t *testing.T) {
	// Entity owned by bob with "$edit alice": bob can edit (owner),
	// alice can edit (listed), carol cannot.
	e := &Entity{
		ID:      "e1",
		Name:    "Luna",
		OwnerID: "bob-id",
		Facts:   []string{"$edit alice"},
	}

	if !CanEdit(e, "bob-id", "bob", nil) {
		t.Error("owner bob cannot edit, want true")
	}
	if !CanEdit(e, "alice-id", "alice", nil) {
		t.Error("listed alice cannot edit, want true")
	}
	if CanEdit(e, "carol-id", "carol", nil) {
		t.Error("unlisted carol can edit, want false")
	}
}

func TestPermissions_UsernameCaseInsensitive(t *testing.T) {
	e := &Entity{OwnerID: "o", Facts: []string{"$edit Alice"}}
	if !CanEdit(e, "a-id", "ALICE", nil) {
		t.Error("username match should be case-insensitive")
	}
}

func TestPermissions_NilListDefaults(t *testing.T) {
	// No directives at all: edit and view are owner-only, use is open.
	e := &Entity{OwnerID: "owner-id", Facts: []string{"just a fact"}}

	if !CanEdit(e, "owner-id", "owner", nil) {
		t.Error("owner cannot edit")
	}
	if CanEdit(e, "u", "user", nil) {
		t.Error("non-owner can edit with nil list, want owner-only")
	}
	if CanView(e, "u", "user", nil) {
		t.Error("non-owner can view with nil list, want owner-only")
	}
	if !IsAllowed(e, "u", "user", nil) {
		t.Error("non-owner cannot use with nil list, want open")
	}
}

func TestPermissions_Everyone(t *testing.T) {
	e := &Entity{OwnerID: "o", Facts: []string{"$view everyone", "$edit @everyone"}}
	if !CanView(e, "u", "user", nil) {
		t.Error("$view everyone should grant view")
	}
	if !CanEdit(e, "u", "user", nil) {
		t.Error("$edit @everyone should grant edit")
	}
}

func TestPermissions_Roles(t *testing.T) {
	e := &Entity{OwnerID: "o", Facts: []string{"$use role:mods"}}
	if !IsAllowed(e, "u", "user", []string{"mods"}) {
		t.Error("role holder denied, want allowed")
	}
	if IsAllowed(e, "u", "user", []string{"other"}) {
		t.Error("non-holder allowed, want denied")
	}
}

// Blacklist denies override every allow list, but never the owner.
func TestPermissions_BlacklistOverrides(t *testing.T) {
	e := &Entity{OwnerID: "o-id", Facts: []string{
		"$edit everyone",
		"$view everyone",
		"$blacklist troll, role:banned",
	}}

	if CanEdit(e, "t-id", "troll", nil) {
		t.Error("blacklisted user can edit despite $edit everyone")
	}
	if CanView(e, "t-id", "TROLL", nil) {
		t.Error("blacklist username match should be case-insensitive")
	}
	if IsAllowed(e, "u", "user", []string{"banned"}) {
		t.Error("blacklisted role can use")
	}
	if !IsBlacklisted(e, "t-id", "troll", nil) {
		t.Error("IsBlacklisted = false for listed username")
	}
	if IsBlacklisted(e, "o-id", "troll", nil) {
		t.Error("owner is blacklisted, want never")
	}
	if !CanEdit(e, "o-id", "owner", nil) {
		t.Error("owner blocked by blacklist, want always allowed")
	}
}

func TestPermissions_Locked(t *testing.T) {
	e := &Entity{OwnerID: "o-id", Facts: []string{
		"$edit everyone",
		"$locked under construction",
	}}

	p := ResolvePermissions(e)
	if !p.Locked {
		t.Fatal("Locked = false, want true")
	}
	if p.LockMessage != "under construction" {
		t.Errorf("LockMessage = %q", p.LockMessage)
	}
	if p.CanEdit("u", "user", nil) {
		t.Error("locked entity editable by non-owner")
	}
	if !p.CanEdit("o-id", "owner", nil) {
		t.Error("locked entity not editable by owner")
	}
}

// Stored defaults apply only where the fact set has no directive.
func TestResolvePermissions_Defaults(t *testing.T) {
	e := &Entity{
		OwnerID: "o",
		Facts:   []string{"$edit alice"},
		Defaults: &Defaults{
			Edit:      ParseList("default-editor"),
			View:      ParseList("everyone"),
			Blacklist: []Entry{{EntryName, "stored-troll"}},
		},
	}

	p := ResolvePermissions(e)

	// $edit directive wins over the stored default.
	if p.CanEdit("u", "default-editor", nil) {
		t.Error("stored edit default applied despite $edit directive")
	}
	if !p.CanEdit("u", "alice", nil) {
		t.Error("alice from directive denied")
	}
	// No $view directive, so the stored default holds.
	if !p.CanView("u", "anyone", nil) {
		t.Error("stored view default not applied")
	}
	// Blacklists combine.
	if !p.IsBlacklisted("u", "stored-troll", nil) {
		t.Error("stored blacklist entry not merged")
	}
}

// $if-gated permission directives are context-dependent and never count
// for authorization.
func TestResolvePermissions_IgnoresConditional(t *testing.T) {
	e := &Entity{OwnerID: "o", Facts: []string{"$if mentioned: $edit everyone"}}
	if CanEdit(e, "u", "user", nil) {
		t.Error("conditional $edit granted authorization")
	}
}
