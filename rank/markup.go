package rank

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup decodes a rank held in the text of an HTML fragment, e.g., `<a href="/item/4">4</a>`.
// Non-string values fall back to Plain.
func Markup(raw any) (int, error) {
	var s string
	switch x := raw.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return Plain(raw)
	}

	text, err := textOf(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotRank, err)
	}
	return parse(text)
}

// MarkupEncode returns an Encoder that formats ranks into the given template, which must contain one %d.
func MarkupEncode(template string) Encoder {
	return func(rank int) any {
		return fmt.Sprintf(template, rank)
	}
}

func textOf(fragment string) (string, error) {
	td := &html.Node{Type: html.ElementNode, Data: "td", DataAtom: atom.Td}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), td)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String(), nil
}
