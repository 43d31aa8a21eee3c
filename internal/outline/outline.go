package outline

import "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

// Node is one outline entry. First points at the node's first child, Next at
// its following sibling.
type Node struct {
	Title string
	First *Node
	Next  *Node

	// Count mirrors the document's visible-child-count field. It is only
	// meaningful when CountSet is true; leaves never have it set.
	Count    int
	CountSet bool

	dict types.Dict
}

// Descendants counts all nodes below n.
func Descendants(n *Node) int {
	total := 0
	for child := n.First; child != nil; child = child.Next {
		total += 1 + Descendants(child)
	}
	return total
}

// CollapseForest collapses every root-level entry of the forest starting at
// first, each independently.
func CollapseForest(first *Node) {
	for n := first; n != nil; n = n.Next {
		collapse(n)
	}
}

func collapse(n *Node) {
	descendants := Descendants(n)
	if descendants == 0 {
		return
	}
	n.Count = -descendants
	n.CountSet = true
	for child := n.First; child != nil; child = child.Next {
		collapse(child)
	}
}
