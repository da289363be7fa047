// ABOUTME: Pure segmentation functions turning plain text into a thread of bounded-length segments.
// ABOUTME: Handles "Tweet #n" preformatted text, sentence packing, smart splitting, and display numbering.
package compose

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLength is the platform's hard cap on a post.
	MaxLength = 280
	// LimitNumbered leaves room for an "N/total " prefix.
	LimitNumbered = 260
	// LimitPlain is the packing limit without numbering.
	LimitPlain = 275
	// MaxSegments caps sentence packing.
	MaxSegments = 25
	// CopySeparator joins segments for copy-all.
	CopySeparator = "\n\n---\n\n"
)

var (
	markerDetect = regexp.MustCompile(`(?i)Tweet\s*#?\s*\d+`)
	markerSplit  = regexp.MustCompile(`(?i)\n*\**Tweet\s*#?\s*(\d+)\s*:?\**\s*\n*`)
	sentenceRe   = regexp.MustCompile(`[^.!?]+[.!?]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// Limit returns the packing limit for the numbering setting.
func Limit(numbering bool) int {
	if numbering {
		return LimitNumbered
	}
	return LimitPlain
}

// Length counts characters as Unicode code points.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// GenerateThread prefers explicit "Tweet #n" markers and falls back to sentence packing.
func GenerateThread(text string, numbering bool) []string {
	if segments := DetectPreformatted(text); len(segments) > 0 {
		return segments
	}
	return GenerateFromText(text, Limit(numbering))
}

type marked struct {
	num     int
	content string
}

// DetectPreformatted extracts segments from text that numbers them with "Tweet #n"
// markers, ordered by marker number. It returns nil when there are no markers or
// no marker is followed by content.
func DetectPreformatted(text string) []string {
	if !markerDetect.MatchString(text) {
		return nil
	}

	locs := markerSplit.FindAllStringSubmatchIndex(text, -1)
	var blocks []marked
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := strings.TrimSpace(text[loc[1]:end])
		if content == "" {
			continue
		}
		num, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		blocks = append(blocks, marked{num: num, content: content})
	}
	if len(blocks) == 0 {
		return nil
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].num < blocks[j].num })
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = CleanContent(b.content)
	}
	return out
}

// CleanContent trims every line, drops leading and trailing blank lines, and
// collapses runs of blank lines to one.
func CleanContent(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	out := strings.Trim(strings.Join(lines, "\n"), "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// GenerateFromText greedily packs sentences into segments of at most limit
// characters. Text with no sentence punctuation becomes one segment truncated to
// MaxLength. A sentence longer than limit is kept whole as its own segment.
func GenerateFromText(text string, limit int) []string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return []string{truncate(strings.TrimSpace(text), MaxLength)}
	}
	if locs := sentenceRe.FindAllStringIndex(text, -1); len(locs) > 0 {
		if tail := text[locs[len(locs)-1][1]:]; strings.TrimSpace(tail) != "" {
			sentences = append(sentences, tail)
		}
	}

	var segments []string
	current := ""
	for _, s := range sentences {
		if Length(current+s) <= limit {
			current += s
			continue
		}
		if t := strings.TrimSpace(current); t != "" {
			segments = append(segments, t)
		}
		current = s
	}
	if t := strings.TrimSpace(current); t != "" {
		segments = append(segments, t)
	}

	if len(segments) == 0 {
		return []string{truncate(strings.TrimSpace(text), MaxLength)}
	}
	if len(segments) > MaxSegments {
		segments = segments[:MaxSegments]
	}
	return segments
}

// SmartSplit breaks text into pieces of at most limit characters, cutting near the
// middle at a newline or space when one is close. Text that already fits comes back
// unchanged as the only element. Pieces left empty by trimming are dropped.
func SmartSplit(text string, limit int) []string {
	if limit < 1 || strings.TrimSpace(text) == "" || Length(text) <= limit {
		return []string{text}
	}

	runes := []rune(text)
	at := splitPoint(runes, len(runes)/2)
	first := strings.TrimSpace(string(runes[:at]))
	second := strings.TrimSpace(string(runes[at:]))

	var out []string
	for _, part := range []string{first, second} {
		if part == "" {
			continue
		}
		if Length(part) > limit {
			out = append(out, SmartSplit(part, limit)...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// splitPoint picks a cut index near target: a newline within 30% before or after,
// then a space within 30% before or after, else target itself.
func splitPoint(runes []rune, target int) int {
	lo, hi := 0.7*float64(target), 1.3*float64(target)
	for _, sep := range []rune{'\n', ' '} {
		if before := lastIndexAtOrBefore(runes, sep, target); float64(before) > lo {
			return before + 1
		}
		if after := indexAtOrAfter(runes, sep, target); after > 0 && float64(after) < hi {
			return after + 1
		}
	}
	return target
}

func lastIndexAtOrBefore(runes []rune, r rune, from int) int {
	if from >= len(runes) {
		from = len(runes) - 1
	}
	for i := from; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func indexAtOrAfter(runes []rune, r rune, from int) int {
	for i := max(from, 0); i < len(runes); i++ {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

// Numbered prefixes text with its "N/total " position.
func Numbered(text string, index, total int) string {
	return fmt.Sprintf("%d/%d %s", index+1, total, text)
}

// Display returns the text each segment will be posted as.
func Display(segments []string, numbering bool) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		if numbering {
			out[i] = Numbered(s, i, len(segments))
		} else {
			out[i] = s
		}
	}
	return out
}

// Validate checks that every displayed segment is non-empty and within MaxLength.
func Validate(segments []string, numbering bool) error {
	if len(segments) == 0 {
		return ErrNoThread
	}
	for i, s := range Display(segments, numbering) {
		if strings.TrimSpace(segments[i]) == "" {
			return fmt.Errorf("segment %d: %w", i+1, ErrEmptyText)
		}
		if n := Length(s); n > MaxLength {
			return &SegmentTooLongError{Index: i, Length: n}
		}
	}
	return nil
}

// CopyAll joins the displayed segments with CopySeparator.
func CopyAll(segments []string, numbering bool) string {
	return strings.Join(Display(segments, numbering), CopySeparator)
}

// Format renders display texts with positions and character counts,
// flagging segments over MaxLength.
func Format(display []string) string {
	var sb strings.Builder
	for i, text := range display {
		n := Length(text)
		flag := ""
		if n > MaxLength {
			flag = " TOO LONG"
		}
		fmt.Fprintf(&sb, "--- %d/%d (%d chars)%s\n%s\n", i+1, len(display), n, flag, text)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
