// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowEntry(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "first", Next: "second"}, Text: "hi"},
		Hangup{BlockMeta: BlockMeta{ID: "second"}},
	})

	entry, ok := flow.Entry()
	require.True(t, ok)
	assert.Equal(t, BlockID("first"), entry.Meta().ID)

	empty := NewFlow("e", "", true, Settings{}, nil)
	_, ok = empty.Entry()
	assert.False(t, ok)
}

func TestFlowBlock(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "a"}},
	})

	b, ok := flow.Block("a")
	require.True(t, ok)
	assert.Equal(t, BlockID("a"), b.Meta().ID)

	_, ok = flow.Block("missing")
	assert.False(t, ok)

	_, ok = flow.Block("")
	assert.False(t, ok, "empty ID never resolves")
}

func TestFlowBlockDuplicateFirstWins(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "dup"}, Text: "first"},
		Say{BlockMeta: BlockMeta{ID: "dup"}, Text: "second"},
	})

	b, ok := flow.Block("dup")
	require.True(t, ok)
	assert.Equal(t, "first", b.(Say).Text)
}

func TestFlowSuccessor(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "a", Next: "b"}},
		Pause{BlockMeta: BlockMeta{ID: "b"}},
		Say{BlockMeta: BlockMeta{ID: "dangling", Next: "nowhere"}},
		Hangup{BlockMeta: BlockMeta{ID: "end", Next: "a"}},
	})

	next, ok := flow.Successor(flow.Blocks[0])
	require.True(t, ok)
	assert.Equal(t, BlockID("b"), next.Meta().ID)

	_, ok = flow.Successor(flow.Blocks[1])
	assert.False(t, ok, "no successor configured")

	_, ok = flow.Successor(flow.Blocks[2])
	assert.False(t, ok, "dangling reference has no successor")

	_, ok = flow.Successor(flow.Blocks[3])
	assert.False(t, ok, "hangup never chains, even with a next configured")
}
