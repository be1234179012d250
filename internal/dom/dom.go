// Package dom is a small adapter over golang.org/x/net/html providing the
// mutable document representation shared by the pipeline stages: parse,
// query, mutate in place, serialize.
//
// The parser is permissive and best-effort; inputs it cannot parse at all
// surface as errors to the caller rather than being repaired here.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// Document wraps a parsed HTML tree plus enough provenance to serialize it
// the way it came in.
type Document struct {
	root *html.Node
	// fullDocument records whether the input carried a doctype. Fragments are
	// re-serialized as head-content + body-content only; wrapping them in a
	// synthetic <html> would invent structure the author never wrote.
	fullDocument bool
}

// Parse parses markup text, accepting either a full document or a fragment.
func Parse(text string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, sperrors.WrapFatal(err, sperrors.CategoryParse, "parsing document")
	}

	doc := &Document{root: root}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			doc.fullDocument = true
			break
		}
	}
	return doc, nil
}

// IsFullDocument reports whether the parsed input carried a doctype.
func (d *Document) IsFullDocument() bool { return d.fullDocument }

// Root returns the document root node.
func (d *Document) Root() *html.Node { return d.root }

// Find returns all element nodes matching the predicate, in document order.
func (d *Document) Find(match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
	})
	return out
}

// FindByAttr returns all elements carrying the given attribute, in document order.
func (d *Document) FindByAttr(attr string) []*html.Node {
	return d.Find(func(n *html.Node) bool {
		return HasAttr(n, attr)
	})
}

// FindByTag returns all elements with the given tag name, in document order.
func (d *Document) FindByTag(tag string) []*html.Node {
	return d.Find(func(n *html.Node) bool {
		return n.Data == tag
	})
}

// Walk visits every node in the subtree rooted at n in document order.
func Walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes the named attribute when present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Remove detaches the node from its parent.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Text concatenates all text content under n.
func Text(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// InsertMarkupAfter parses the markup as a fragment in ref's parent context
// and inserts the resulting nodes immediately after ref, preserving order.
func InsertMarkupAfter(ref *html.Node, markup string) error {
	nodes, err := parseInContext(ref, markup)
	if err != nil {
		return err
	}
	next := ref.NextSibling
	for _, n := range nodes {
		if next != nil {
			ref.Parent.InsertBefore(n, next)
		} else {
			ref.Parent.AppendChild(n)
		}
	}
	return nil
}

// InsertMarkupBefore parses the markup as a fragment in ref's parent context
// and inserts the resulting nodes immediately before ref, preserving order.
func InsertMarkupBefore(ref *html.Node, markup string) error {
	nodes, err := parseInContext(ref, markup)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		ref.Parent.InsertBefore(n, ref)
	}
	return nil
}

func parseInContext(ref *html.Node, markup string) ([]*html.Node, error) {
	if ref.Parent == nil {
		return nil, sperrors.New(sperrors.CategoryInternal, sperrors.SeverityError, "cannot insert next to a detached node")
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if ref.Parent.Type == html.ElementNode {
		ctx = &html.Node{Type: html.ElementNode, Data: ref.Parent.Data, DataAtom: ref.Parent.DataAtom}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, sperrors.WrapFatal(err, sperrors.CategoryParse, "parsing inserted markup")
	}
	return nodes, nil
}

// Render serializes the document back to text. Full documents re-emit the
// whole tree; fragments re-emit only the concatenation of head content and
// body content.
func (d *Document) Render() (string, error) {
	stripNamespaceArtifacts(d.root)

	var sb strings.Builder
	if d.fullDocument {
		if err := html.Render(&sb, d.root); err != nil {
			return "", sperrors.WrapError(err, sperrors.CategoryParse, "rendering document")
		}
		return sb.String(), nil
	}

	for _, section := range []atom.Atom{atom.Head, atom.Body} {
		el := findElement(d.root, section)
		if el == nil {
			continue
		}
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&sb, c); err != nil {
				return "", sperrors.WrapError(err, sperrors.CategoryParse, "rendering fragment")
			}
		}
	}
	return sb.String(), nil
}

// findElement returns the first element with the given atom, depth first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// stripNamespaceArtifacts drops namespace prefixes the permissive parser can
// attach to attributes of elements that are not themselves in a foreign
// namespace, so serialization never emits spurious xmlns noise.
func stripNamespaceArtifacts(root *html.Node) {
	Walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Namespace != "" {
			return
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if strings.HasPrefix(a.Key, "xmlns:") {
				continue
			}
			a.Namespace = ""
			kept = append(kept, a)
		}
		n.Attr = kept
	})
}
