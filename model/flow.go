// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package model

// Settings are flow-level defaults applied when a block omits a value.
type Settings struct {
	Voice string
}

// Flow is a user-configured graph of blocks bound to a phone number.
// A Flow is immutable once built; the interpreter only reads it.
type Flow struct {
	ID       string
	Name     string
	Active   bool
	Settings Settings

	// Blocks in declaration order. The first block is the entry point for a
	// fresh call, matching how the dashboard has always saved flows.
	Blocks []Block

	byID map[BlockID]Block
}

// NewFlow builds a flow and its block index. When two blocks share an ID the
// first declaration wins; Validate reports the duplicate.
func NewFlow(id, name string, active bool, settings Settings, blocks []Block) *Flow {
	f := &Flow{
		ID:       id,
		Name:     name,
		Active:   active,
		Settings: settings,
		Blocks:   blocks,
		byID:     make(map[BlockID]Block, len(blocks)),
	}
	for _, b := range blocks {
		if _, exists := f.byID[b.Meta().ID]; !exists {
			f.byID[b.Meta().ID] = b
		}
	}
	return f
}

// Block looks up a block by ID.
func (f *Flow) Block(id BlockID) (Block, bool) {
	if id == "" {
		return nil, false
	}
	if f.byID != nil {
		b, ok := f.byID[id]
		return b, ok
	}
	for _, b := range f.Blocks {
		if b.Meta().ID == id {
			return b, true
		}
	}
	return nil, false
}

// Entry returns the block a fresh call starts at: the first block in
// declaration order.
func (f *Flow) Entry() (Block, bool) {
	if len(f.Blocks) == 0 {
		return nil, false
	}
	return f.Blocks[0], true
}

// Successor resolves a block's single successor. It returns false when the
// block has no successor configured, the reference dangles, or the block is
// a Hangup (which never chains, whatever its Next says).
func (f *Flow) Successor(b Block) (Block, bool) {
	if _, isHangup := b.(Hangup); isHangup {
		return nil, false
	}
	return f.Block(b.Meta().Next)
}
