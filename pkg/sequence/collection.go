// Package sequence groups rendered output file names into contiguous
// frame-sequence collections by shared prefix, padding and suffix.
package sequence

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// framePattern captures the trailing frame number of a file name, e.g.
// "renderMain.0001.exr" -> head "renderMain.", frame "0001", tail ".exr".
var framePattern = regexp.MustCompile(`^(.*?)(\d+)(\.[^.]+)$`)

// Collection is a set of files sharing one numbering pattern.
type Collection struct {
	Head    string
	Tail    string
	Padding int

	files map[int]string
}

// Pattern is the identity of a collection: prefix, suffix and padding.
func (c *Collection) Pattern() string {
	return fmt.Sprintf("%s%s%s%s", c.Head, "%", strconv.Itoa(c.Padding)+"d", c.Tail)
}

// Name is the head trimmed of trailing separators, used as the
// representation name for this sequence.
func (c *Collection) Name() string {
	return strings.TrimRight(c.Head, "._-")
}

// Ext is the tail without its leading dot.
func (c *Collection) Ext() string {
	return strings.TrimPrefix(c.Tail, ".")
}

// Indexes returns the frame numbers present, ascending.
func (c *Collection) Indexes() []int {
	idx := make([]int, 0, len(c.files))
	for i := range c.files {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Members returns the member file names in frame order.
func (c *Collection) Members() []string {
	members := make([]string, 0, len(c.files))
	for _, i := range c.Indexes() {
		members = append(members, c.files[i])
	}
	return members
}

// FrameStart returns the lowest frame number, or 0 for an empty collection.
func (c *Collection) FrameStart() int {
	idx := c.Indexes()
	if len(idx) == 0 {
		return 0
	}
	return idx[0]
}

// FrameEnd returns the highest frame number, or 0 for an empty collection.
func (c *Collection) FrameEnd() int {
	idx := c.Indexes()
	if len(idx) == 0 {
		return 0
	}
	return idx[len(idx)-1]
}

// Len returns the member count.
func (c *Collection) Len() int {
	return len(c.files)
}

func (c *Collection) remove(frame int) {
	delete(c.files, frame)
}

// Assemble groups file names into collections keyed by their numbering
// pattern. Names without a trailing frame number are returned as the
// remainder. Collections are ordered by first appearance of their
// pattern in the input.
func Assemble(fileNames []string) ([]*Collection, []string) {
	var order []string
	byPattern := make(map[string]*Collection)
	var remainder []string

	for _, name := range fileNames {
		m := framePattern.FindStringSubmatch(name)
		if m == nil {
			remainder = append(remainder, name)
			continue
		}
		head, frameStr, tail := m[1], m[2], m[3]
		frame, err := strconv.Atoi(frameStr)
		if err != nil {
			remainder = append(remainder, name)
			continue
		}

		key := fmt.Sprintf("%s|%d|%s", head, len(frameStr), tail)
		col, ok := byPattern[key]
		if !ok {
			col = &Collection{
				Head:    head,
				Tail:    tail,
				Padding: len(frameStr),
				files:   make(map[int]string),
			}
			byPattern[key] = col
			order = append(order, key)
		}
		col.files[frame] = name
	}

	collections := make([]*Collection, 0, len(order))
	for _, key := range order {
		collections = append(collections, byPattern[key])
	}
	return collections, remainder
}

// FrameRange is an inclusive frame interval.
type FrameRange struct {
	Start int
	End   int
}

// Contains reports whether the frame falls inside the range.
func (fr FrameRange) Contains(frame int) bool {
	return frame >= fr.Start && frame <= fr.End
}

// Collect assembles fileNames into exactly one collection and returns
// its members in frame order. Frames inside exclude are removed from
// the result. The caller must have partitioned files by logical output
// already; more than one detected pattern is an error.
func Collect(fileNames []string, exclude *FrameRange) ([]string, error) {
	collections, _ := Assemble(fileNames)
	if len(collections) != 1 {
		return nil, fmt.Errorf("expected a single file sequence, found %d", len(collections))
	}
	col := collections[0]

	if exclude != nil {
		for _, frame := range col.Indexes() {
			if exclude.Contains(frame) {
				col.remove(frame)
			}
		}
	}
	return col.Members(), nil
}
