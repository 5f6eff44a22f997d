package lexer

import (
	"testing"
)

func TestLex_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kinds  []Kind
	}{
		{"empty", "", []Kind{EOF}},
		{"spaces only", "  \t\n", []Kind{EOF}},
		{"number", "42", []Kind{Number, EOF}},
		{"decimal", "3.14", []Kind{Number, EOF}},
		{"string", `"hello"`, []Kind{String, EOF}},
		{"single quoted", `'hello'`, []Kind{String, EOF}},
		{"bool true", "true", []Kind{Bool, EOF}},
		{"bool false", "false", []Kind{Bool, EOF}},
		{"identifier", "mentioned", []Kind{Ident, EOF}},
		{"member access", "channel.nsfw", []Kind{Ident, Dot, Ident, EOF}},
		{"comparison", "dt > 5000", []Kind{Ident, Gt, Number, EOF}},
		{"logical", "a && b || !c", []Kind{Ident, AndAnd, Ident, OrOr, Bang, Ident, EOF}},
		{"equality", "a == b != c", []Kind{Ident, EqEq, Ident, BangEq, Ident, EOF}},
		{"relational", "a <= b >= c", []Kind{Ident, LtEq, Ident, GtEq, Ident, EOF}},
		{"arithmetic", "1 + 2 - 3 * 4 / 5 % 6", []Kind{Number, Plus, Number, Minus, Number, Star, Number, Slash, Number, Percent, Number, EOF}},
		{"ternary", "a ? 1 : 2", []Kind{Ident, Question, Number, Colon, Number, EOF}},
		{"call", "random(6)", []Kind{Ident, LParen, Number, RParen, EOF}},
		{"index", "chars[0]", []Kind{Ident, LBracket, Number, RBracket, EOF}},
		{"call args", `messages(5, "plain")`, []Kind{Ident, LParen, Number, Comma, String, RParen, EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.source)
			if err != nil {
				t.Fatalf("Lex(%q) failed: %v", tt.source, err)
			}
			if len(toks) != len(tt.kinds) {
				t.Fatalf("len(tokens) = %d, want %d (%v)", len(toks), len(tt.kinds), toks)
			}
			for i, k := range tt.kinds {
				if toks[i].Kind != k {
					t.Errorf("token[%d].Kind = %v, want %v", i, toks[i].Kind, k)
				}
			}
		})
	}
}

func TestLex_Values(t *testing.T) {
	tests := []struct {
		source string
		want   any
	}{
		{"42", 42.0},
		{"3.5", 3.5},
		{"0", 0.0},
		{"true", true},
		{"false", false},
		{`"hi"`, "hi"},
		{`'hi'`, "hi"},
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"a\\b"`, `a\b`},
		{`"say \"hi\""`, `say "hi"`},
	}

	for _, tt := range tests {
		toks, err := Lex(tt.source)
		if err != nil {
			t.Fatalf("Lex(%q) failed: %v", tt.source, err)
		}
		if toks[0].Value != tt.want {
			t.Errorf("Lex(%q) value = %#v, want %#v", tt.source, toks[0].Value, tt.want)
		}
	}
}

// Regex-looking escapes must pass through with the backslash intact so
// patterns like "\d+" reach the validator unchanged.
func TestLex_PreservesRegexEscapes(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`"\d+"`, `\d+`},
		{`"\w\s"`, `\w\s`},
		{`"[a-z]\b"`, `[a-z]\b`},
		{`'https?://[^\s]+'`, `https?://[^\s]+`},
	}

	for _, tt := range tests {
		toks, err := Lex(tt.source)
		if err != nil {
			t.Fatalf("Lex(%q) failed: %v", tt.source, err)
		}
		if got := toks[0].Value.(string); got != tt.want {
			t.Errorf("Lex(%q) value = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestLex_NumberDotMember(t *testing.T) {
	// A dot not followed by a digit is member access.
	toks, err := Lex("42.length")
	if err != nil {
		t.Fatalf("Lex() failed: %v", err)
	}
	want := []Kind{Number, Dot, Ident, EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token[%d].Kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexPrefix_StopsAtFreeText(t *testing.T) {
	tests := []struct {
		source    string
		wantKinds []Kind
		wantEOF   int
	}{
		{"mentioned: don't be shy", []Kind{Ident, Colon, Ident, EOF}, 14},
		{"replied: ping @alice", []Kind{Ident, Colon, Ident, EOF}, 14},
		{"@oops", []Kind{EOF}, 0},
		{"a > 1", []Kind{Ident, Gt, Number, EOF}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			toks := LexPrefix(tt.source)
			if len(toks) != len(tt.wantKinds) {
				t.Fatalf("LexPrefix(%q) = %d tokens, want %d", tt.source, len(toks), len(tt.wantKinds))
			}
			for i, k := range tt.wantKinds {
				if toks[i].Kind != k {
					t.Errorf("token[%d].Kind = %v, want %v", i, toks[i].Kind, k)
				}
			}
			if last := toks[len(toks)-1]; last.Pos != tt.wantEOF {
				t.Errorf("EOF pos = %d, want %d", last.Pos, tt.wantEOF)
			}
		})
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unterminated double", `"abc`},
		{"unterminated single", `'abc`},
		{"trailing backslash", `"abc\`},
		{"lone ampersand", "a & b"},
		{"lone pipe", "a | b"},
		{"unexpected character", "a @ b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Lex(tt.source); err == nil {
				t.Errorf("Lex(%q) succeeded, want error", tt.source)
			}
		})
	}
}

func TestLex_Positions(t *testing.T) {
	toks, err := Lex("ab + cd")
	if err != nil {
		t.Fatalf("Lex() failed: %v", err)
	}
	wantPos := []int{0, 3, 5}
	for i, p := range wantPos {
		if toks[i].Pos != p {
			t.Errorf("token[%d].Pos = %d, want %d", i, toks[i].Pos, p)
		}
	}
}
