// Package nxfile models the wrapper record (spec.md §3) as a tree of
// tagged variants, standing in for the external hierarchical file
// container library that spec.md §1 treats as an opaque group/field
// store with file-level locks. Group/Field/Link mirror the "dynamic
// storage objects" design note in spec.md §9: the source mixes typed
// fields and generic containers, so the node tree carries string-keyed
// children plus a (name -> scalar|string|array) attribute map, the way
// the teacher's cluster.LOM mixes typed accessors over a generic
// xattr-style metadata blob (cluster/lom.go).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package nxfile

import "fmt"

// Kind tags a Node as one of the three wrapper-tree variants.
type Kind int

const (
	KindGroup Kind = iota
	KindField
	KindLink
)

// Node is one entry in the wrapper tree.
type Node struct {
	Kind Kind

	// Group
	Children map[string]*Node

	// Field
	Value interface{} // scalar, string, or a flat []float64/[]int64 array

	// Link
	Target string // external-link target path (e.g. raw 3D data array)

	Attrs map[string]interface{}
}

func NewGroup() *Node {
	return &Node{Kind: KindGroup, Children: make(map[string]*Node), Attrs: make(map[string]interface{})}
}

func NewField(value interface{}) *Node {
	return &Node{Kind: KindField, Value: value, Attrs: make(map[string]interface{})}
}

func NewLink(target string) *Node {
	return &Node{Kind: KindLink, Target: target, Attrs: make(map[string]interface{})}
}

// Set inserts or replaces a named child of a Group node.
func (n *Node) Set(name string, child *Node) error {
	if n.Kind != KindGroup {
		return fmt.Errorf("nxfile: Set on non-group node")
	}
	n.Children[name] = child
	return nil
}

// Get returns the named child, or nil if absent or n is not a Group.
func (n *Node) Get(name string) *Node {
	if n.Kind != KindGroup || n.Children == nil {
		return nil
	}
	return n.Children[name]
}

// Path walks a sequence of group names, one per argument, returning the
// final node.
func (n *Node) Path(parts ...string) *Node {
	cur := n
	for _, p := range parts {
		if cur == nil {
			return nil
		}
		cur = cur.Get(p)
	}
	return cur
}

// EnsureGroup returns the named child group, creating it (and any
// missing intermediate groups) if absent.
func (n *Node) EnsureGroup(parts ...string) *Node {
	cur := n
	for _, p := range parts {
		child := cur.Get(p)
		if child == nil {
			child = NewGroup()
			_ = cur.Set(p, child)
		}
		cur = child
	}
	return cur
}

func (n *Node) SetAttr(name string, value interface{}) { n.Attrs[name] = value }
func (n *Node) Attr(name string) (interface{}, bool)   { v, ok := n.Attrs[name]; return v, ok }

// Wrapper is the top-level scan record: a top `entry` group plus one
// sub-entry per detector position (spec.md §3).
type Wrapper struct {
	Root *Node // Group containing "entry" and its sub-entries as siblings under Root
}

func NewWrapper() *Wrapper {
	return &Wrapper{Root: NewGroup()}
}

// Entries returns every sub-entry name other than "entry" (invariant
// (i), spec.md §3).
func (w *Wrapper) Entries() []string {
	var names []string
	for name := range w.Root.Children {
		if name != "entry" {
			names = append(names, name)
		}
	}
	return names
}

func (w *Wrapper) Entry(name string) *Node { return w.Root.Get(name) }

// HasProcessRecord reports whether entry/<stage> exists - invariant
// (ii) of spec.md §3: "a task is DONE iff its process record exists
// under the corresponding entry".
func (w *Wrapper) HasProcessRecord(entry, stage string) bool {
	e := w.Entry(entry)
	if e == nil {
		return false
	}
	return e.Get(stage) != nil
}

// ProcessRecord is the {program, sequence_index, version, note} blob
// written by every stage on success (spec.md §4.6).
type ProcessRecord struct {
	Program        string            `json:"program"`
	SequenceIndex  int               `json:"sequence_index"`
	Version        string            `json:"version"`
	Note           map[string]string `json:"note"`
	Stdout         string            `json:"stdout,omitempty"`
	Stderr         string            `json:"stderr,omitempty"`
	CommandLine    string            `json:"command_line,omitempty"`
}

// WriteProcessRecord installs entry/<stage> = record, deleting any
// prior record first so overwrite replaces byte-for-byte except
// timestamps (spec.md §8 "Round-trip and idempotence").
func (w *Wrapper) WriteProcessRecord(entry, stage string, rec ProcessRecord) error {
	e := w.Root.EnsureGroup(entry)
	node := NewGroup()
	node.SetAttr("program", rec.Program)
	node.SetAttr("sequence_index", rec.SequenceIndex)
	node.SetAttr("version", rec.Version)
	for k, v := range rec.Note {
		node.SetAttr("note."+k, v)
	}
	if rec.Stdout != "" {
		node.SetAttr("stdout", rec.Stdout)
	}
	if rec.Stderr != "" {
		node.SetAttr("stderr", rec.Stderr)
	}
	if rec.CommandLine != "" {
		node.SetAttr("command_line", rec.CommandLine)
	}
	return e.Set(stage, node)
}

func (w *Wrapper) DeleteProcessRecord(entry, stage string) {
	e := w.Entry(entry)
	if e == nil {
		return
	}
	delete(e.Children, stage)
}
