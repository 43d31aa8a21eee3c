package outline

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"presswork/internal/config"
	"presswork/internal/logging"
)

// maxNodes bounds the outline walk so a corrupt document with a reference
// cycle cannot hang a batch.
const maxNodes = 1 << 16

// Collapser applies the collapse convention to rendered documents on disk.
type Collapser struct {
	enabled  bool
	maxBytes int64
	logger   *slog.Logger
}

// NewCollapser builds a Collapser from configuration.
func NewCollapser(cfg *config.Config, logger *slog.Logger) *Collapser {
	return &Collapser{
		enabled:  cfg.Collapse.Enabled,
		maxBytes: int64(cfg.Collapse.MaxSizeMiB) << 20,
		logger:   logging.WithComponent(logger, "outline"),
	}
}

// CollapseFile rewrites the document at path with every outline entry
// closed. Documents without an outline are left untouched. Documents above
// the configured size threshold are skipped and logged, not failed.
func (c *Collapser) CollapseFile(path string) error {
	if !c.enabled {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if c.maxBytes > 0 && info.Size() > c.maxBytes {
		c.logger.Info("skipping outline collapse for large document",
			logging.String("path", path),
			logging.Int64("size_bytes", info.Size()),
			logging.Int64("max_bytes", c.maxBytes))
		return nil
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	catalog, err := ctx.Catalog()
	if err != nil {
		return fmt.Errorf("resolve catalog: %w", err)
	}
	outlinesObj, found := catalog.Find("Outlines")
	if !found {
		return nil
	}
	outlines, err := ctx.DereferenceDict(outlinesObj)
	if err != nil {
		return fmt.Errorf("resolve outline root: %w", err)
	}
	firstObj, found := outlines.Find("First")
	if !found {
		return nil
	}

	remaining := maxNodes
	forest, err := loadForest(ctx.XRefTable, firstObj, &remaining)
	if err != nil {
		return fmt.Errorf("walk outline: %w", err)
	}
	if forest == nil {
		return nil
	}

	CollapseForest(forest)
	writeCounts(forest)

	if err := api.WriteContextFile(ctx, path); err != nil {
		return fmt.Errorf("rewrite document: %w", err)
	}
	c.logger.Debug("outline collapsed", logging.String("path", path))
	return nil
}

func loadForest(xref *model.XRefTable, obj types.Object, remaining *int) (*Node, error) {
	var head, tail *Node
	for {
		if *remaining <= 0 {
			return nil, fmt.Errorf("outline exceeds %d entries", maxNodes)
		}
		*remaining--

		dict, err := xref.DereferenceDict(obj)
		if err != nil {
			return nil, err
		}
		node := &Node{dict: dict}
		if childObj, found := dict.Find("First"); found {
			child, err := loadForest(xref, childObj, remaining)
			if err != nil {
				return nil, err
			}
			node.First = child
		}
		if head == nil {
			head = node
		} else {
			tail.Next = node
		}
		tail = node

		next, found := dict.Find("Next")
		if !found {
			break
		}
		obj = next
	}
	return head, nil
}

func writeCounts(n *Node) {
	for ; n != nil; n = n.Next {
		if n.CountSet && n.dict != nil {
			n.dict["Count"] = types.Integer(n.Count)
		}
		writeCounts(n.First)
	}
}
