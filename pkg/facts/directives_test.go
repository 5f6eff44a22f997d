package facts

import (
	"testing"
)

func TestParseLine_Kinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind lineKind
	}{
		{"plain fact", "Luna is friendly", linePlain},
		{"plain with inner dollar", "costs $5 to enter", linePlain},
		{"if", "$if mentioned: $respond", lineIf},
		{"respond", "$respond", lineRespond},
		{"respond false", "$respond false", lineRespond},
		{"retry", "$retry 30000", lineRetry},
		{"edit", "$edit alice, bob", lineEdit},
		{"view", "$view everyone", lineView},
		{"use", "$use role:123", lineUse},
		{"blacklist", "$blacklist troll", lineBlacklist},
		{"locked", "$locked", lineLocked},
		{"locked with message", "$locked ask the owner", lineLocked},
		{"config key", "avatar: https://example.com/a.png", lineConfig},
		{"leading whitespace", "  $respond", lineRespond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parseLine(tt.line)
			if err != nil {
				t.Fatalf("parseLine(%q) failed: %v", tt.line, err)
			}
			if p.kind != tt.kind {
				t.Errorf("parseLine(%q) kind = %d, want %d", tt.line, p.kind, tt.kind)
			}
		})
	}
}

// Directive keywords are case-sensitive; near-misses stay plain facts.
func TestParseLine_CaseSensitiveDirectives(t *testing.T) {
	for _, line := range []string{"$Respond", "$RETRY 500", "$If mentioned: x"} {
		p, err := parseLine(line)
		if err != nil {
			t.Fatalf("parseLine(%q) failed: %v", line, err)
		}
		if p.kind != linePlain {
			t.Errorf("parseLine(%q) kind = %d, want plain", line, p.kind)
		}
	}
}

// Prose with colons and URLs must not be mistaken for config facts.
func TestParseLine_ConfigKeyBoundaries(t *testing.T) {
	tests := []struct {
		line string
		kind lineKind
		key  string
	}{
		{"avatar: https://x.example/a.png", lineConfig, "avatar"},
		{"mood_level: high", lineConfig, "mood_level"},
		{"Note: likes tea", linePlain, ""},       // uppercase key
		{"https://example.com", linePlain, ""},   // no space after colon
		{"avatar:no-space", linePlain, ""},       // colon must be followed by whitespace
		{"see chapter 3: the end", linePlain, ""}, // key has spaces
	}

	for _, tt := range tests {
		p, err := parseLine(tt.line)
		if err != nil {
			t.Fatalf("parseLine(%q) failed: %v", tt.line, err)
		}
		if p.kind != tt.kind {
			t.Errorf("parseLine(%q) kind = %d, want %d", tt.line, p.kind, tt.kind)
		}
		if tt.kind == lineConfig && p.key != tt.key {
			t.Errorf("parseLine(%q) key = %q, want %q", tt.line, p.key, tt.key)
		}
	}
}

func TestParseLine_Errors(t *testing.T) {
	lines := []string{
		"$respond maybe",
		"$retry abc",
		"$retry -5",
		"$retry 0",
		"$if mentioned $respond", // missing colon
		"$if mentioned:",         // empty body
		"$if 1 +: x",             // bad expression
	}

	for _, line := range lines {
		if _, err := parseLine(line); err == nil {
			t.Errorf("parseLine(%q) succeeded, want error", line)
		}
	}
}

func TestParseIf_SplitsOnRealColon(t *testing.T) {
	tests := []struct {
		line     string
		wantExpr string
		wantBody string
	}{
		{"$if mentioned: $respond", "mentioned", "$respond"},
		{"$if dt_ms > 5000: {{char}} is bored", "dt_ms > 5000", "{{char}} is bored"},
		// The ternary colon belongs to the expression; the body starts
		// after the next bare colon.
		{"$if (time.is_night ? mentioned : replied): $respond", "(time.is_night ? mentioned : replied)", "$respond"},
		{`$if content.match("\d+"): has a number`, `content.match("\d+")`, "has a number"},
		{"$if mentioned: $if replied: $respond", "mentioned", "$if replied: $respond"},
		// Free-text bodies may contain characters the expression
		// language cannot tokenize.
		{"$if mentioned: don't be shy", "mentioned", "don't be shy"},
		{"$if replied: ping @alice in #general!", "replied", "ping @alice in #general!"},
		{"$if time.is_night ? mentioned : replied: it's late", "time.is_night ? mentioned : replied", "it's late"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			p, err := parseLine(tt.line)
			if err != nil {
				t.Fatalf("parseLine(%q) failed: %v", tt.line, err)
			}
			if p.expr != tt.wantExpr {
				t.Errorf("expr = %q, want %q", p.expr, tt.wantExpr)
			}
			if p.body != tt.wantBody {
				t.Errorf("body = %q, want %q", p.body, tt.wantBody)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := Classify([]string{
		"Luna is friendly",
		"$if mentioned: $respond",
		"$edit alice",
		"$blacklist troll",
		"$blacklist 42",
		"likes tea",
		"$retry nonsense", // malformed, skipped
	})

	if len(c.Plain) != 2 {
		t.Fatalf("len(Plain) = %d, want 2", len(c.Plain))
	}
	if c.Plain[0] != "Luna is friendly" || c.Plain[1] != "likes tea" {
		t.Errorf("Plain = %v", c.Plain)
	}
	if len(c.Conditionals) != 1 {
		t.Fatalf("len(Conditionals) = %d, want 1", len(c.Conditionals))
	}
	if c.Conditionals[0].Expr != "mentioned" || c.Conditionals[0].Body != "$respond" {
		t.Errorf("Conditionals[0] = %+v", c.Conditionals[0])
	}
	if c.Conditionals[0].Index != 1 {
		t.Errorf("Conditionals[0].Index = %d, want 1", c.Conditionals[0].Index)
	}
	if c.Permissions.Edit == nil || len(c.Permissions.Edit.Entries) != 1 {
		t.Fatalf("Edit = %+v", c.Permissions.Edit)
	}
	if len(c.Permissions.Blacklist) != 2 {
		t.Errorf("len(Blacklist) = %d, want 2", len(c.Permissions.Blacklist))
	}
}

func TestExpandMacros(t *testing.T) {
	tests := []struct {
		fact string
		want string
	}{
		{"{{char}} waves at {{user}}", "Luna waves at alice"},
		{"no macros here", "no macros here"},
		{"{{char}}{{char}}", "LunaLuna"},
		{"{{unknown}} stays", "{{unknown}} stays"},
	}

	for _, tt := range tests {
		if got := ExpandMacros(tt.fact, "Luna", "alice"); got != tt.want {
			t.Errorf("ExpandMacros(%q) = %q, want %q", tt.fact, got, tt.want)
		}
	}
}
