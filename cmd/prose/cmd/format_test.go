package cmd

import (
	"testing"

	"github.com/chazu/prose/compiler"
	"github.com/chazu/prose/compiler/hash"
)

var formatSources = map[string]string{
	"statements": `declare a, b
set a to 1
b to a + 2
show b
showline()
input name to input('Name?')`,

	"if": `if a then
show 1
else if b then
show 2
else
show 3
end if`,

	"loops": `for i from 1 to 10 step 2
show i
end for
foreach (k, v) in pairs
show k
end foreach
generate n from 0 to 4 by 2
show n
stop
repeat while (x < 3)
x to x + 1
end repeat
repeat 3 times
skip
end repeat
iterate item over (items)
exit
end iterate`,

	"choose": `choose x
when 1:
show "one"
otherwise:
show "many"
end choose`,

	"class": `class Dog inherit Animal
public declare name
secret set age to 3
sound to "woof"
init(n)
parent.init(n)
this.name to n
end init
method speak()
show this.sound
return this.name
end method
end class`,

	"functions": `function add(a, b to 2)
return a + b
end function
function f()
return
end function
callback onClick(evt)
set total to add(1, 2)`,

	"misc": `import "math", io, net.http
from shapes import Circle, Square
try
raise error("bad")
capture (e)
show e
stop
set d to {"a": 1, "b": [2, 3]}
set h to 0x1A
set t to if a then 1 else 2
set n to not a and b
show config["a"]["b"]
show new Point(1, 2).x`,
}

func TestFormatIdempotent(t *testing.T) {
	for name, src := range formatSources {
		once, err := Format(src)
		if err != nil {
			t.Errorf("%s: Format error: %v", name, err)
			continue
		}
		twice, err := Format(once)
		if err != nil {
			t.Errorf("%s: reformat error: %v\n%s", name, err, once)
			continue
		}
		if once != twice {
			t.Errorf("%s: not idempotent\nfirst:\n%s\nsecond:\n%s", name, once, twice)
		}
	}
}

func TestFormatPreservesTree(t *testing.T) {
	for name, src := range formatSources {
		before, err := compiler.Parse(src)
		if err != nil {
			t.Errorf("%s: parse error: %v", name, err)
			continue
		}
		out, err := Format(src)
		if err != nil {
			t.Errorf("%s: Format error: %v", name, err)
			continue
		}
		after, err := compiler.Parse(out)
		if err != nil {
			t.Errorf("%s: formatted source does not parse: %v\n%s", name, err, out)
			continue
		}
		if hash.HashTree(before) != hash.HashTree(after) {
			t.Errorf("%s: tree changed by formatting\n%s", name, out)
		}
	}
}

func TestFormatIndentation(t *testing.T) {
	got, err := Format("if a then\nfor i from 1 to 2\nshow i\nend for\nend if")
	if err != nil {
		t.Fatal(err)
	}
	want := "if a then\n\tfor i from 1 to 2\n\t\tshow i\n\tend for\nend if\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatParentheses(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"set x to 1 + 2 * 3", "set x to 1 + 2 * 3\n"},
		{"set x to (1 + 2) * 3", "set x to (1 + 2) * 3\n"},
		{"set x to (a - b) - c", "set x to a - b - c\n"},
		{"set x to a - (b - c)", "set x to a - (b - c)\n"},
		{"set x to (not a) and b", "set x to (not a) and b\n"},
		{"set x to (a + b).size", "set x to (a + b).size\n"},
		{"set x to 2 ^ 3", "set x to 2 ^ 3\n"},
	}
	for _, tc := range tests {
		got, err := Format(tc.input)
		if err != nil {
			t.Errorf("Format(%q) error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFormatParseError(t *testing.T) {
	if _, err := Format("if x then show x"); err == nil {
		t.Error("expected error for unterminated if")
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain":     `"plain"`,
		`say "hi"`:  `"say \"hi\""`,
		`back\`:     `"back\\"`,
		"two\nline": `"two\nline"`,
		"tab\there": `"tab\there"`,
	}
	for in, want := range tests {
		if got := quote(in); got != want {
			t.Errorf("quote(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestModulePath(t *testing.T) {
	tests := map[string]string{
		"math":     "math",
		"net.http": "net.http",
		"my-lib":   `"my-lib"`,
		"if":       `"if"`,
		"":         `""`,
	}
	for in, want := range tests {
		if got := modulePath(in); got != want {
			t.Errorf("modulePath(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestHasComment(t *testing.T) {
	if !hasComment("show 1 // one") || !hasComment("/* x */ show 1") {
		t.Error("expected comments to be detected")
	}
	if hasComment("show 1") {
		t.Error("unexpected comment in plain source")
	}
}
