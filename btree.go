package ese

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-ese/ese/internal/buf"
	"github.com/go-ese/ese/internal/format"
)

// RootInfo is the page-extent header carried in tag 0 of a ROOT page.
type RootInfo struct {
	InitialPages uint32
	ExtentPages  uint32
	SpaceTreePage uint32
	Flags        uint32
}

func decodeRootInfo(b []byte) (RootInfo, error) {
	if len(b) < 12 {
		return RootInfo{}, wrap(ErrMalformedRecord, "root metadata tag truncated", nil)
	}
	return RootInfo{
		InitialPages:  format.ReadU32(b, 0),
		ExtentPages:   format.ReadU32(b, 4),
		SpaceTreePage: format.ReadU32(b, 8),
	}, nil
}

// RootExtent reads and decodes the page-extent metadata carried in tag 0 of
// the root page of the tree rooted at root.
func (f *File) RootExtent(ctx context.Context, root PageNumber) (RootInfo, error) {
	p, err := f.loadPage(root)
	if err != nil {
		return RootInfo{}, err
	}
	if !p.IsRoot() {
		return RootInfo{}, wrap(ErrNotARoot, fmt.Sprintf("page %d", root), nil)
	}
	tags, err := p.Tags()
	if err != nil {
		return RootInfo{}, err
	}
	if len(tags) == 0 {
		return RootInfo{}, wrap(ErrMalformedRecord, fmt.Sprintf("page %d has no tags", root), nil)
	}
	raw, err := p.Cell(tags[0])
	if err != nil {
		return RootInfo{}, err
	}
	return decodeRootInfo(raw)
}

// BranchCell is one reconstructed (key, child) pair from a branch page.
type BranchCell struct {
	Key   []byte
	Child PageNumber
}

// LeafCell is one reconstructed (key, value) pair from a leaf page. Value's
// interpretation depends on the owning tree: a data-tree leaf holds a record,
// an index-tree leaf holds a primary-key reference, an LV-tree leaf holds a
// long-value segment.
type LeafCell struct {
	Key   []byte
	Value []byte
}

// decodeCellKey splits a non-metadata cell's raw bytes into its reconstructed
// key and the remaining payload, applying common-key prefix compression
// against pageKey (the page's first non-metadata cell, per §4.5/§9).
func decodeCellKey(raw, pageKey []byte) (key []byte, rest []byte, err error) {
	if len(raw) < 1 {
		return nil, nil, wrap(ErrMalformedRecord, "empty cell", nil)
	}
	flags := raw[0]
	off := 1
	var commonSize int
	if flags&format.CellFlagCommonKey != 0 {
		cs, e := format.CheckedReadU16(raw, off)
		if e != nil {
			return nil, nil, wrap(ErrTruncatedValue, "common-key size", e)
		}
		commonSize = int(cs)
		off += 2
	}
	localSize, e := format.CheckedReadU16(raw, off)
	if e != nil {
		return nil, nil, wrap(ErrTruncatedValue, "local-key size", e)
	}
	off += 2

	localKey, ok := buf.Slice(raw, off, int(localSize))
	if !ok {
		return nil, nil, wrap(ErrTruncatedValue, "local-key bytes", nil)
	}
	off += int(localSize)

	if commonSize > 0 {
		if commonSize > len(pageKey) {
			return nil, nil, wrap(ErrMalformedRecord, "common-key size exceeds page key length", nil)
		}
		key = make([]byte, 0, commonSize+len(localKey))
		key = append(key, pageKey[:commonSize]...)
		key = append(key, localKey...)
	} else {
		key = localKey
	}
	return key, raw[off:], nil
}

// branchCells decodes every non-metadata tag of a branch page into BranchCells.
func branchCells(p Page, tags []Tag) ([]BranchCell, error) {
	pageKey, startIdx := pageKeyAndStart(p, tags)
	cells := make([]BranchCell, 0, len(tags))
	for i := startIdx; i < len(tags); i++ {
		t := tags[i]
		if t.Flags.Defunct() {
			continue
		}
		raw, err := p.Cell(t)
		if err != nil {
			return nil, err
		}
		key, rest, err := decodeCellKey(raw, pageKey)
		if err != nil {
			return nil, fmt.Errorf("branch tag %d: %w", t.Index, err)
		}
		if len(rest) < 4 {
			return nil, wrap(ErrTruncatedValue, fmt.Sprintf("branch tag %d missing child pointer", t.Index), nil)
		}
		child := format.ReadU32(rest, 0)
		cells = append(cells, BranchCell{Key: key, Child: PageNumber(child)})
		if i == startIdx {
			pageKey = key
		}
	}
	return cells, nil
}

// leafCells decodes every non-metadata tag of a leaf page into LeafCells.
func leafCells(p Page, tags []Tag) ([]LeafCell, error) {
	pageKey, startIdx := pageKeyAndStart(p, tags)
	cells := make([]LeafCell, 0, len(tags))
	for i := startIdx; i < len(tags); i++ {
		t := tags[i]
		if t.Flags.Defunct() {
			continue
		}
		raw, err := p.Cell(t)
		if err != nil {
			return nil, err
		}
		key, rest, err := decodeCellKey(raw, pageKey)
		if err != nil {
			return nil, fmt.Errorf("leaf tag %d: %w", t.Index, err)
		}
		cells = append(cells, LeafCell{Key: key, Value: rest})
		if i == startIdx {
			pageKey = key
		}
	}
	return cells, nil
}

// pageKeyAndStart returns the page's key-compression anchor (the first
// non-metadata cell's reconstructed key) and the tag index at which real
// cells begin: 1 for root pages (tag 0 is the RootInfo header), 0 otherwise.
func pageKeyAndStart(p Page, tags []Tag) ([]byte, int) {
	start := 0
	if p.IsRoot() {
		start = 1
	}
	if start >= len(tags) {
		return nil, start
	}
	// The anchor cell is never itself prefix-compressed (nothing precedes it).
	raw, err := p.Cell(tags[start])
	if err != nil {
		return nil, start
	}
	key, _, err := decodeCellKey(raw, nil)
	if err != nil {
		return nil, start
	}
	return key, start
}

// Bitmap is a fixed-size, O(1) bit-set used to track visited page numbers
// during traversal without the overhead of a map.
type Bitmap struct {
	bits []uint64
	size uint32
}

// NewBitmap allocates a Bitmap able to track page numbers in [0, size).
func NewBitmap(size uint32) *Bitmap {
	return &Bitmap{bits: make([]uint64, (size/64)+1), size: size}
}

func (b *Bitmap) Set(n uint32) {
	if n >= b.size {
		return
	}
	b.bits[n/64] |= 1 << (n % 64)
}

func (b *Bitmap) IsSet(n uint32) bool {
	if n >= b.size {
		return false
	}
	return b.bits[n/64]&(1<<(n%64)) != 0
}

// stackEntry is one frame of the walker's explicit DFS stack, avoiding
// recursion so traversal depth is bounded only by available memory, not the
// goroutine stack.
type stackEntry struct {
	page  PageNumber
	depth int
}

// Visitor receives leaf cells during a Walk, in left-to-right key order.
type Visitor func(cell LeafCell) error

// maxTreeDepth bounds the descent depth of Walk and Seek, defending against
// corrupt sibling/child pointers turning a walk into an unbounded loop.
const maxTreeDepth = 64

// Walk traverses every leaf of the tree rooted at root, depth-first and
// left-to-right, invoking visit for each leaf cell. Cycles, over-deep
// subtrees and scrubbed pages are always recorded as Diagnostics and skipped;
// corrupt pages below the root are skipped the same way when opts.Tolerant is
// set, and abort the walk otherwise, per §7's local-recovery policy. A page
// whose XOR checksum matches but whose ECC checksum does not is recorded as
// ECC-correctable and read normally.
func (f *File) Walk(ctx context.Context, root PageNumber, visit Visitor) error {
	rootPage, err := f.loadPage(root)
	if err != nil {
		return err
	}
	if !rootPage.IsRoot() {
		return wrap(ErrNotARoot, fmt.Sprintf("page %d", root), nil)
	}

	visited := NewBitmap(f.pageCount())
	stack := []stackEntry{{page: root, depth: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return wrap(ErrCancelled, "", err)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited.IsSet(uint32(top.page)) {
			f.diag.record(DiagnosticSiblingInconsistency, uint32(top.page), "cycle detected, page re-visited")
			continue
		}
		visited.Set(uint32(top.page))
		if top.depth > maxTreeDepth {
			f.diag.record(DiagnosticSkippedSubtree, uint32(top.page), "tree depth exceeded sanity bound")
			continue
		}

		page, err := f.loadPage(top.page)
		if err != nil {
			if f.opts.Tolerant {
				f.diag.record(DiagnosticSkippedSubtree, uint32(top.page), err.Error())
				continue
			}
			return err
		}
		if cs := page.Checksum(); cs.XOROK && !cs.ECCOK {
			f.diag.record(DiagnosticECCCorrected, uint32(top.page), "ECC checksum mismatch, XOR checksum valid; page read")
		} else if !page.ChecksumOK() {
			if f.opts.Tolerant {
				f.diag.record(DiagnosticSkippedSubtree, uint32(top.page), "checksum invalid")
				continue
			}
			return wrap(ErrChecksumMismatch, fmt.Sprintf("page %d", top.page), nil)
		}
		if page.IsScrubbed() {
			f.diag.record(DiagnosticScrubbedPage, uint32(top.page), "scrubbed page reported empty")
			continue
		}

		tags, err := page.Tags()
		if err != nil {
			if f.opts.Tolerant {
				f.diag.record(DiagnosticSkippedSubtree, uint32(top.page), err.Error())
				continue
			}
			return err
		}

		switch {
		case page.IsBranch():
			cells, err := branchCells(page, tags)
			if err != nil {
				if f.opts.Tolerant {
					f.diag.record(DiagnosticSkippedSubtree, uint32(top.page), err.Error())
					continue
				}
				return err
			}
			// Push in reverse so the leftmost child is processed first (stack is LIFO).
			for i := len(cells) - 1; i >= 0; i-- {
				stack = append(stack, stackEntry{page: cells[i].Child, depth: top.depth + 1})
			}
		case page.IsLeaf():
			cells, err := leafCells(page, tags)
			if err != nil {
				if f.opts.Tolerant {
					f.diag.record(DiagnosticSkippedRecord, uint32(top.page), err.Error())
					continue
				}
				return err
			}
			for _, c := range cells {
				if err := visit(c); err != nil {
					return err
				}
			}
		default:
			f.diag.record(DiagnosticSkippedSubtree, uint32(top.page), "page has neither LEAF nor PARENT flag")
		}
	}
	return nil
}

// Seek descends from root through the last branch key less than or equal to
// target, per §4.5's binary-search-at-each-branch rule, and returns the leaf
// cell whose key equals target; ok is false when that leaf has no such cell.
func (f *File) Seek(ctx context.Context, root PageNumber, target []byte) (LeafCell, bool, error) {
	current := root
	for depth := 0; depth <= maxTreeDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return LeafCell{}, false, wrap(ErrCancelled, "", err)
		}
		page, err := f.loadPage(current)
		if err != nil {
			return LeafCell{}, false, err
		}
		tags, err := page.Tags()
		if err != nil {
			return LeafCell{}, false, err
		}

		if page.IsBranch() {
			cells, err := branchCells(page, tags)
			if err != nil {
				return LeafCell{}, false, err
			}
			idx := seekBranch(cells, target)
			if idx < 0 {
				return LeafCell{}, false, nil
			}
			current = cells[idx].Child
			continue
		}
		if page.IsLeaf() {
			cells, err := leafCells(page, tags)
			if err != nil {
				return LeafCell{}, false, err
			}
			idx := seekLeaf(cells, target)
			if idx < 0 {
				return LeafCell{}, false, nil
			}
			return cells[idx], true, nil
		}
		return LeafCell{}, false, wrap(ErrUnknownPageRole, fmt.Sprintf("page %d", current), nil)
	}
	return LeafCell{}, false, wrap(ErrNotARoot, "tree exceeds max depth during seek", nil)
}

// seekBranch returns the index of the last child whose key <= target, 0 when
// every key is greater than target, or -1 when there are no cells.
func seekBranch(cells []BranchCell, target []byte) int {
	lo, hi := 0, len(cells)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if bytes.Compare(cells[mid].Key, target) <= 0 {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best < 0 && len(cells) > 0 {
		best = 0
	}
	return best
}

// seekLeaf returns the index of the cell whose key equals target, or -1.
func seekLeaf(cells []LeafCell, target []byte) int {
	lo, hi := 0, len(cells)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		c := bytes.Compare(cells[mid].Key, target)
		switch {
		case c == 0:
			return mid
		case c < 0:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}
