package desc

import (
	"bytes"
	"encoding/xml"
)

// node is a generic XML element tree. The unit description is navigated by
// attribute values (Func, YNC_Tag, Title_1) rather than fixed paths, so a
// token-stream pass is not enough here.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func parseTree(payload []byte) (*node, error) {
	var root node
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	if err := decoder.Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// walk visits n and every descendant in document order until visit returns false.
func (n *node) walk(visit func(*node) bool) bool {
	if !visit(n) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].walk(visit) {
			return false
		}
	}
	return true
}

// findAll returns descendants (including n) matching the predicate, in
// document order.
func (n *node) findAll(match func(*node) bool) []*node {
	var out []*node
	n.walk(func(cand *node) bool {
		if match(cand) {
			out = append(out, cand)
		}
		return true
	})
	return out
}

// find returns the first descendant (including n) matching the predicate.
func (n *node) find(match func(*node) bool) *node {
	var found *node
	n.walk(func(cand *node) bool {
		if match(cand) {
			found = cand
			return false
		}
		return true
	})
	return found
}

func (n *node) findTag(tag string) *node {
	return n.find(func(cand *node) bool { return cand.XMLName.Local == tag })
}

func (n *node) findTagAll(tag string) []*node {
	return n.findAll(func(cand *node) bool { return cand.XMLName.Local == tag })
}

func (n *node) findAttr(attr, value string) *node {
	return n.find(func(cand *node) bool { return cand.attr(attr) == value })
}

func (n *node) findAttrAll(attr, value string) []*node {
	return n.findAll(func(cand *node) bool { return cand.attr(attr) == value })
}

func (n *node) child(tag string) *node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == tag {
			return &n.Children[i]
		}
	}
	return nil
}
