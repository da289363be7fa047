// ABOUTME: Reduces rich (HTML) content to normalized plain text before segmentation.
// ABOUTME: Keeps line structure from <br> and block elements; drops scripts, styles, and markup.
package compose

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LooksLikeHTML reports whether s should go through PlainText. Angle brackets
// alone are not enough: s needs a closing tag of a known element, a void
// element such as <br>, or a doctype. "a<b and c>d" stays plain text.
func LooksLikeHTML(s string) bool {
	if !strings.ContainsRune(s, '<') || !strings.ContainsRune(s, '>') {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.DoctypeToken:
			return true
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) != 0 {
				return true
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Br, atom.Hr, atom.Img, atom.Wbr:
				return true
			}
		}
	}
}

// PlainText converts HTML to text. <br> becomes a newline, block elements get a
// newline on each side that has a sibling, and 3+ newlines collapse to 2. Input
// that is not HTML is only normalized.
func PlainText(s string) string {
	if !LooksLikeHTML(s) {
		return NormalizeText(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return NormalizeText(s)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Head, atom.Template:
				return
			case atom.Br:
				b.WriteByte('\n')
				return
			}
		}

		block := n.Type == html.ElementNode && isBlock(n.DataAtom)
		if block && n.PrevSibling != nil {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block && n.NextSibling != nil {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	return NormalizeText(b.String())
}

// NormalizeText unifies line endings, collapses blank-line runs, and trims.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Section, atom.Article, atom.Header, atom.Footer, atom.Tr, atom.Table:
		return true
	}
	return false
}
