// Package outline collapses a rendered document's bookmark tree so every
// entry starts closed. The outline is a rooted forest of first-child /
// next-sibling nodes; collapsing sets each parent's count field to the
// negation of its descendant total, the convention viewers use for "closed,
// with N descendants". Leaf nodes keep their count field unset.
package outline
