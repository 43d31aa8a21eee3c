package outline

import (
	"path/filepath"
	"strings"
	"testing"

	"presswork/internal/config"
	"presswork/internal/logging"
	"presswork/internal/testsupport"
)

// tree builds a node with the given children.
func tree(title string, children ...*Node) *Node {
	n := &Node{Title: title}
	var tail *Node
	for _, child := range children {
		if n.First == nil {
			n.First = child
		} else {
			tail.Next = child
		}
		tail = child
	}
	return n
}

func TestDescendants(t *testing.T) {
	leaf := tree("leaf")
	if got := Descendants(leaf); got != 0 {
		t.Errorf("leaf descendants = %d, want 0", got)
	}

	root := tree("root",
		tree("a", tree("a1"), tree("a2")),
		tree("b"),
		tree("c", tree("c1")),
	)
	if got := Descendants(root); got != 6 {
		t.Errorf("descendants = %d, want 6", got)
	}
}

func TestCollapseForest(t *testing.T) {
	a := tree("a", tree("a1"), tree("a2"))
	b := tree("b")
	c := tree("c", tree("c1"))
	root := tree("root", a, b, c)

	CollapseForest(root)

	if !root.CountSet || root.Count != -5 {
		t.Errorf("root count = (%d, %v), want (-5, true)", root.Count, root.CountSet)
	}
	if !a.CountSet || a.Count != -2 {
		t.Errorf("a count = (%d, %v), want (-2, true)", a.Count, a.CountSet)
	}
	if !c.CountSet || c.Count != -1 {
		t.Errorf("c count = (%d, %v), want (-1, true)", c.Count, c.CountSet)
	}
	for _, leaf := range []*Node{b, a.First, a.First.Next, c.First} {
		if leaf.CountSet {
			t.Errorf("leaf %q has count set", leaf.Title)
		}
	}
}

func TestCollapseForestMultipleRoots(t *testing.T) {
	first := tree("one", tree("x"))
	second := tree("two")
	third := tree("three", tree("y"), tree("z"))
	first.Next = second
	second.Next = third

	CollapseForest(first)

	if !first.CountSet || first.Count != -1 {
		t.Errorf("first count = (%d, %v), want (-1, true)", first.Count, first.CountSet)
	}
	if second.CountSet {
		t.Error("childless root should keep count unset")
	}
	if !third.CountSet || third.Count != -2 {
		t.Errorf("third count = (%d, %v), want (-2, true)", third.Count, third.CountSet)
	}
}

func TestCollapseForestIdempotent(t *testing.T) {
	root := tree("root", tree("a", tree("a1")))

	CollapseForest(root)
	firstPass := root.Count
	CollapseForest(root)

	if root.Count != firstPass {
		t.Errorf("count changed on second pass: %d then %d", firstPass, root.Count)
	}
}

func newCollapser(t *testing.T, enabled bool, maxMiB int) *Collapser {
	t.Helper()
	cfg := config.Default()
	cfg.Collapse.Enabled = enabled
	cfg.Collapse.MaxSizeMiB = maxMiB
	return NewCollapser(&cfg, logging.NewNop())
}

func TestCollapseFileDisabled(t *testing.T) {
	c := newCollapser(t, false, 5)

	// Never touches the path when disabled, so a missing file is fine.
	if err := c.CollapseFile(filepath.Join(t.TempDir(), "absent.pdf")); err != nil {
		t.Fatalf("disabled collapse: %v", err)
	}
}

func TestCollapseFileMissing(t *testing.T) {
	c := newCollapser(t, true, 5)

	if err := c.CollapseFile(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestCollapseFileSkipsLargeDocuments(t *testing.T) {
	c := newCollapser(t, true, 1)
	path := filepath.Join(t.TempDir(), "huge.pdf")
	// Larger than the 1 MiB threshold; skipped before any parsing.
	testsupport.WriteFile(t, path, strings.Repeat("x", 2<<20))

	if err := c.CollapseFile(path); err != nil {
		t.Fatalf("oversized document should be skipped, got %v", err)
	}
}

func TestCollapseFileRejectsGarbage(t *testing.T) {
	c := newCollapser(t, true, 5)
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	testsupport.WriteFile(t, path, "not a document")

	if err := c.CollapseFile(path); err == nil {
		t.Fatal("expected parse error for garbage input")
	}
}
