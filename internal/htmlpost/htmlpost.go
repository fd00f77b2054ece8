// Package htmlpost analyzes and rewrites rendered HTML fragments: word
// count, bookmark (anchor id) extraction, first-heading title extraction,
// and locale-keyed link-type annotation.
package htmlpost

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Result carries everything derived from one post-processing pass.
type Result struct {
	HTML      string
	WordCount int
	Bookmarks []string
}

// Process parses an HTML fragment, annotates links for the given locale,
// and computes word count and the bookmark anchor set.
func Process(fragment string, locale string) (Result, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return Result{}, err
	}

	res := Result{}
	seen := map[string]struct{}{}
	for _, n := range nodes {
		walk(n, func(node *html.Node) {
			if node.Type == html.ElementNode {
				annotateLink(node, locale)
				collectBookmark(node, seen, &res.Bookmarks)
			}
			if node.Type == html.TextNode {
				res.WordCount += countWords(node.Data)
			}
		})
	}

	res.HTML, err = renderNodes(nodes)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// ExtractTitle returns the text of the first heading element (h1..h6) in
// the fragment and its raw markup. ok is false when no heading exists.
func ExtractTitle(fragment string) (title string, rawTitle string, ok bool) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", "", false
	}

	var heading *html.Node
	for _, n := range nodes {
		walk(n, func(node *html.Node) {
			if heading != nil || node.Type != html.ElementNode {
				return
			}
			switch node.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				heading = node
			}
		})
		if heading != nil {
			break
		}
	}
	if heading == nil {
		return "", "", false
	}

	raw, err := renderNodes([]*html.Node{heading})
	if err != nil {
		return "", "", false
	}
	return strings.TrimSpace(innerText(heading)), raw, true
}

func parseFragment(fragment string) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	return html.ParseFragment(strings.NewReader(fragment), body)
}

func renderNodes(nodes []*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func innerText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
	})
	return sb.String()
}

// annotateLink sets the data-linktype attribute on anchors and rewrites
// site-absolute destinations to carry the locale segment.
func annotateLink(node *html.Node, locale string) {
	if node.DataAtom != atom.A && node.DataAtom != atom.Img {
		return
	}
	attrName := "href"
	if node.DataAtom == atom.Img {
		attrName = "src"
	}

	dest := getAttr(node, attrName)
	if dest == "" {
		return
	}

	switch {
	case strings.HasPrefix(dest, "#"):
		setAttr(node, "data-linktype", "self-bookmark")
	case strings.HasPrefix(dest, "//") || strings.Contains(dest, "://"):
		setAttr(node, "data-linktype", "external")
	case strings.HasPrefix(dest, "/"):
		if locale != "" && !strings.HasPrefix(dest, "/"+locale+"/") {
			setAttr(node, attrName, "/"+locale+dest)
		}
		setAttr(node, "data-linktype", "absolute")
	default:
		setAttr(node, "data-linktype", "relative")
	}
}

// collectBookmark records id attributes (and legacy <a name>) in document
// order, deduplicated.
func collectBookmark(node *html.Node, seen map[string]struct{}, out *[]string) {
	id := getAttr(node, "id")
	if id == "" && node.DataAtom == atom.A {
		id = getAttr(node, "name")
	}
	if id == "" {
		return
	}
	if _, dup := seen[id]; dup {
		return
	}
	seen[id] = struct{}{}
	*out = append(*out, id)
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
