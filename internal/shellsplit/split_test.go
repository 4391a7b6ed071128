package shellsplit

import (
	"reflect"
	"testing"
)

func TestSplitSingleCommand(t *testing.T) {
	got := Split("ls -la")
	want := []string{"ls -la"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split(%q) = %v, want %v", "ls -la", got, want)
	}
}

func TestSplitSeparators(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"and", "git add . && git commit", []string{"git add .", "git commit"}},
		{"or", "make || echo failed", []string{"make", "echo failed"}},
		{"semicolon", "cd /tmp; ls", []string{"cd /tmp", "ls"}},
		{"pipe", "cat file | grep foo", []string{"cat file", "grep foo"}},
		{"mixed", "a && b | c; d || e", []string{"a", "b", "c", "d", "e"}},
		{"no spaces around", "a&&b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitQuotedSeparatorsAreLiteral(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"double quoted and", `echo "a && b"`, []string{`echo "a && b"`}},
		{"single quoted pipe", `echo 'a | b'`, []string{`echo 'a | b'`}},
		{"quoted semicolon", `echo "one; two"`, []string{`echo "one; two"`}},
		{"quote then real separator", `echo "a;b" && ls`, []string{`echo "a;b"`, "ls"}},
		{"single inside double", `echo "it's fine" ; ls`, []string{`echo "it's fine"`, "ls"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitEscapedSeparator(t *testing.T) {
	// The backslash neutralizes the semicolon and stays in the output.
	got := Split(`echo a\;b`)
	want := []string{`echo a\;b`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestSplitEmptySegmentsDropped(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{";;;", nil},
		{"a && && b", []string{"a", "b"}},
		{"ls ;", []string{"ls"}},
		{"; ls", []string{"ls"}},
	}

	for _, tt := range tests {
		got := Split(tt.line)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSplitUnterminatedQuoteRunsToEnd(t *testing.T) {
	// An open quote swallows the rest of the line, separators included.
	got := Split(`echo "unclosed && ls`)
	want := []string{`echo "unclosed && ls`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestSplitPreservesInnerWhitespace(t *testing.T) {
	got := Split(`echo  "two  spaces"`)
	want := []string{`echo  "two  spaces"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}
