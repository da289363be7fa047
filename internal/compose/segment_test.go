// ABOUTME: Tests for thread generation, smart splitting, numbering, and validation.
// ABOUTME: Exercises the "Tweet #n" extraction, sentence packing limits, and split properties.
package compose

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestLimit(t *testing.T) {
	if Limit(true) != 260 {
		t.Errorf("Limit(true) = %d, want 260", Limit(true))
	}
	if Limit(false) != 275 {
		t.Errorf("Limit(false) = %d, want 275", Limit(false))
	}
}

func TestDetectPreformatted(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"in order", "Tweet #1\nA\nTweet #2\nB", []string{"A", "B"}},
		{"reordered markers", "Tweet #2\nB\nTweet #1\nA", []string{"A", "B"}},
		{"numeric not lexical order", "Tweet 10\nJ\nTweet 9\nI", []string{"I", "J"}},
		{"case insensitive without hash", "tweet 1\nfirst\nTWEET 2\nsecond", []string{"first", "second"}},
		{
			"emphasis and cleanup",
			"**Tweet 1**\n\nHello  \n  world\n\n\n\nbye\n\n**Tweet 2:**\nSecond",
			[]string{"Hello\nworld\n\nbye", "Second"},
		},
		{"intro text dropped", "Here is your thread\nTweet 1\nA", []string{"A"}},
		{"empty blocks skipped", "Tweet 1\n\nTweet 2\nB", []string{"B"}},
		{"no markers", "Just some text. Nothing else.", nil},
		{"markers without content", "Tweet 1\n  \n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectPreformatted(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectPreformatted(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanContent(t *testing.T) {
	got := CleanContent("\n\n  a  \n\n\n\n b \n\n")
	if got != "a\n\nb" {
		t.Errorf("CleanContent = %q, want %q", got, "a\n\nb")
	}
}

func TestGenerateFromTextPacksSentences(t *testing.T) {
	s := strings.Repeat("a", 99) + "."
	text := s + " " + s + " " + s

	got := GenerateFromText(text, 275)
	want := []string{s + " " + s, s}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %d segments %q, want %q", len(got), got, want)
	}
	for i, seg := range got {
		if Length(seg) > 275 {
			t.Errorf("segment %d has %d characters", i, Length(seg))
		}
	}
}

func TestGenerateFromTextShortText(t *testing.T) {
	got := GenerateFromText("One. Two! Three?! Four...", 275)
	want := []string{"One. Two! Three?! Four..."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerateFromTextKeepsTrailingText(t *testing.T) {
	got := GenerateFromText("First sentence. trailing words", 275)
	want := []string{"First sentence. trailing words"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerateFromTextNoPunctuation(t *testing.T) {
	text := strings.Repeat("word ", 100)
	got := GenerateFromText(text, 275)
	if len(got) != 1 {
		t.Fatalf("expected a single segment, got %d", len(got))
	}
	if Length(got[0]) > MaxLength {
		t.Errorf("segment has %d characters, want <= %d", Length(got[0]), MaxLength)
	}
	if !strings.HasPrefix(text, got[0]) {
		t.Error("expected a truncation of the original text")
	}

	if got := GenerateFromText("  short note  ", 275); !reflect.DeepEqual(got, []string{"short note"}) {
		t.Errorf("got %q", got)
	}
}

func TestGenerateFromTextCapsSegments(t *testing.T) {
	s := strings.Repeat("b", 199) + "."
	parts := make([]string, 30)
	for i := range parts {
		parts[i] = s
	}
	got := GenerateFromText(strings.Join(parts, " "), 275)
	if len(got) != MaxSegments {
		t.Errorf("got %d segments, want %d", len(got), MaxSegments)
	}
}

func TestGenerateThreadNumberingLimit(t *testing.T) {
	// 130 + 1 + 130 = 261 fits the plain limit but not the numbered one.
	s := strings.Repeat("c", 129) + "."
	text := s + " " + s

	if got := GenerateThread(text, false); len(got) != 1 {
		t.Errorf("plain: got %d segments, want 1", len(got))
	}
	if got := GenerateThread(text, true); len(got) != 2 {
		t.Errorf("numbered: got %d segments, want 2", len(got))
	}
}

func TestGenerateThreadFallsThrough(t *testing.T) {
	got := GenerateThread("Tweet #1\n   \n", false)
	if !reflect.DeepEqual(got, []string{"Tweet #1"}) {
		t.Errorf("got %q", got)
	}

	got = GenerateThread("Tweet #2\nB\nTweet #1\nA", false)
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("got %q", got)
	}
}

func TestSmartSplitShortIsIdentity(t *testing.T) {
	for _, s := range []string{"", "hi", " padded ", strings.Repeat("z", 275)} {
		got := SmartSplit(s, 275)
		if len(got) != 1 || got[0] != s {
			t.Errorf("SmartSplit(%q) = %q, want [%q]", s, got, s)
		}
	}
}

func TestSmartSplitLongText(t *testing.T) {
	for _, limit := range []int{LimitPlain, LimitNumbered} {
		text := strings.Repeat("lorem ipsum ", 60)[:2*limit+10]

		parts := SmartSplit(text, limit)
		if len(parts) < 2 {
			t.Fatalf("limit %d: expected at least 2 parts, got %d", limit, len(parts))
		}
		for i, p := range parts {
			if Length(p) > limit {
				t.Errorf("limit %d: part %d has %d characters", limit, i, Length(p))
			}
		}
		if got, want := strings.Fields(strings.Join(parts, " ")), strings.Fields(text); !reflect.DeepEqual(got, want) {
			t.Errorf("limit %d: words not preserved", limit)
		}
	}
}

func TestSmartSplitPrefersNewline(t *testing.T) {
	first := strings.Repeat("a", 250)
	second := strings.TrimSpace(strings.Repeat("b ", 75))
	got := SmartSplit(first+"\n"+second, 275)
	want := []string{first, second}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSmartSplitWithoutSeparators(t *testing.T) {
	text := strings.Repeat("x", 600)
	parts := SmartSplit(text, 275)
	if strings.Join(parts, "") != text {
		t.Error("expected parts to reconstruct the original")
	}
	for i, p := range parts {
		if Length(p) > 275 {
			t.Errorf("part %d has %d characters", i, Length(p))
		}
	}
}

func TestSmartSplitDropsBlankPieces(t *testing.T) {
	text := strings.Repeat(" ", 200) + strings.Repeat("a", 100)
	parts := SmartSplit(text, 275)
	if len(parts) != 1 || parts[0] != strings.Repeat("a", 100) {
		t.Errorf("expected the single non-blank piece, got %q", parts)
	}
}

func TestSmartSplitCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 300)
	parts := SmartSplit(text, 275)
	if len(parts) != 2 || Length(parts[0]) != 150 || Length(parts[1]) != 150 {
		t.Errorf("expected two 150-rune parts, got %d parts", len(parts))
	}
}

func TestDisplayNumbering(t *testing.T) {
	segs := []string{"a", "b"}
	if got := Display(segs, true); !reflect.DeepEqual(got, []string{"1/2 a", "2/2 b"}) {
		t.Errorf("numbered display = %q", got)
	}
	if got := Display(segs, false); !reflect.DeepEqual(got, segs) {
		t.Errorf("plain display = %q", got)
	}
	if segs[0] != "a" || segs[1] != "b" {
		t.Error("display must not modify stored segments")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]string{strings.Repeat("x", 280)}, false); err != nil {
		t.Errorf("280 plain characters should pass: %v", err)
	}
	if err := Validate([]string{strings.Repeat("x", 276)}, true); err != nil {
		t.Errorf("276 + prefix should pass: %v", err)
	}

	err := Validate([]string{"ok", strings.Repeat("x", 277)}, true)
	var tooLong *SegmentTooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected SegmentTooLongError, got %v", err)
	}
	if tooLong.Index != 1 || tooLong.Length != 281 {
		t.Errorf("got %+v", tooLong)
	}

	if err := Validate([]string{"ok", "  "}, false); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if err := Validate(nil, false); !errors.Is(err, ErrNoThread) {
		t.Errorf("expected ErrNoThread, got %v", err)
	}
}

func TestCopyAll(t *testing.T) {
	if got := CopyAll([]string{"a", "b"}, false); got != "a\n\n---\n\nb" {
		t.Errorf("got %q", got)
	}
	if got := CopyAll([]string{"a", "b"}, true); got != "1/2 a\n\n---\n\n2/2 b" {
		t.Errorf("got %q", got)
	}
}

func TestFormat(t *testing.T) {
	got := Format([]string{"hello", strings.Repeat("x", 281)})
	if !strings.HasPrefix(got, "--- 1/2 (5 chars)\nhello\n") {
		t.Errorf("unexpected first entry: %q", got)
	}
	if !strings.Contains(got, "--- 2/2 (281 chars) TOO LONG\n") {
		t.Errorf("expected oversized flag, got %q", got)
	}
}
