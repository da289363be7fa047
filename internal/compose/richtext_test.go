// ABOUTME: Tests for HTML-to-plain-text reduction.
// ABOUTME: Checks line breaks from <br> and block elements, entity decoding, and script removal.
package compose

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "<p>Hello <b>world</b></p><p>Second</p>", "Hello world\n\nSecond"},
		{"br", "line one<br>line two", "line one\nline two"},
		{"divs", "<div>a</div><div>b</div><div>c</div>", "a\n\nb\n\nc"},
		{"collapse breaks", "<p>a</p><br><br><br><br><p>b</p>", "a\n\nb"},
		{"entities and scripts", "Fish &amp; chips<script>alert(1)</script>", "Fish & chips"},
		{"formatted source", "<p>a</p>\n<p>b</p>\n", "a\n\nb"},
		{"plain text", "  hello\r\nworld  ", "hello\nworld"},
		{"plain blank runs", "a\n\n\n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if LooksLikeHTML("a < b") {
		t.Error("a lone < is not HTML")
	}
	if !LooksLikeHTML("<p>x</p>") {
		t.Error("expected <p> to look like HTML")
	}
}

func TestLooksLikeHTMLNeedsRealMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a<b and c>d", false},
		{"if x<y and y>z then stop", false},
		{"<b and c>", false},
		{"<made-up>x</made-up>", false},
		{"line one<br>line two", true},
		{"Fish &amp; chips<script>alert(1)</script>", true},
		{"<!DOCTYPE html><title>t</title>", true},
	}
	for _, tt := range tests {
		if got := LooksLikeHTML(tt.in); got != tt.want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlainTextKeepsComparisons(t *testing.T) {
	in := "If a<b and c>d then the loop ends early. This matters."
	if got := PlainText(in); got != in {
		t.Errorf("PlainText(%q) = %q, want it unchanged", in, got)
	}
}
