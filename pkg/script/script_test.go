package script

import (
	"strings"
	"testing"

	scripterrors "anima-hq/tulpa/pkg/script/errors"
	"anima-hq/tulpa/pkg/script/eval"
)

// End-to-end expressions the way entity authors actually write them.
func TestCompileEval_Examples(t *testing.T) {
	ctx := &eval.Context{
		Mentioned: true,
		DtMs:      120000,
		Content:   "hey luna, what's in room 42?",
		Author:    "alice",
		Name:      "luna",
		Chars:     []string{"luna", "rex"},
		Time:      eval.TimeInfo{Hour: 23, IsNight: true},
		Channel:   eval.ChannelInfo{Name: "tavern", NSFW: false},
		Self:      map[string]string{"mood": "curious"},
		Facts:     []string{"luna is nocturnal"},
	}

	tests := []struct {
		source string
		want   bool
	}{
		{"mentioned", true},
		{"mentioned && dt_ms > 60000", true},
		{"mentioned || replied", true},
		{"time.is_night && !channel.nsfw", true},
		{`content.includes("luna")`, true},
		{`content.match("room \d+")`, true},
		{`content.match("^luna")`, false},
		{`has_fact("nocturnal")`, true},
		{`self.mood == "curious"`, true},
		{`chars.includes(name)`, true},
		{`author == "bob"`, false},
		{"dt_ms > 60000 ? mentioned : replied", true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			c, err := Compile(tt.source)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.source, err)
			}
			got, err := c.EvalTruthy(ctx)
			if err != nil {
				t.Fatalf("EvalTruthy(%q) failed: %v", tt.source, err)
			}
			if got != tt.want {
				t.Errorf("EvalTruthy(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestCompile_ReusableAcrossContexts(t *testing.T) {
	c, err := Compile(`content.match("\d+") != ""`)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	got1, err := c.EvalTruthy(&eval.Context{Content: "room 42"})
	if err != nil {
		t.Fatalf("EvalTruthy() failed: %v", err)
	}
	got2, err := c.EvalTruthy(&eval.Context{Content: "no numbers"})
	if err != nil {
		t.Fatalf("EvalTruthy() failed: %v", err)
	}
	if !got1 || got2 {
		t.Errorf("results = %v, %v; want true, false", got1, got2)
	}
	if c.Source() != `content.match("\d+") != ""` {
		t.Errorf("Source() = %q", c.Source())
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   scripterrors.Kind
	}{
		{"syntax", "1 +", scripterrors.KindSyntax},
		{"dynamic pattern", "content.match(author)", scripterrors.KindDynamicPattern},
		{"unsafe regex", `content.match("(?:a+)+")`, scripterrors.KindUnsafeRegex},
		{"matchAll", `content.matchAll("a")`, scripterrors.KindSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source)
			if err == nil {
				t.Fatalf("Compile(%q) = nil, want error", tt.source)
			}
			if got := scripterrors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestEval_OneShot(t *testing.T) {
	v, err := Eval("1 + 2 * 3", &eval.Context{})
	if err != nil {
		t.Fatalf("Eval() failed: %v", err)
	}
	if v != 7.0 {
		t.Errorf("Eval() = %#v, want 7", v)
	}
}

func TestValidateRegexPattern(t *testing.T) {
	if err := ValidateRegexPattern(`https?://[^\s]+`); err != nil {
		t.Errorf("ValidateRegexPattern(url) = %v, want nil", err)
	}

	err := ValidateRegexPattern("(?:a+)+")
	if err == nil {
		t.Fatal("ValidateRegexPattern((?:a+)+) = nil, want error")
	}
	if !strings.Contains(err.Error(), "nested quantifier") {
		t.Errorf("error = %q, want nested quantifier mention", err)
	}
}
