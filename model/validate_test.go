// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasIssue(issues []Issue, severity Severity, blockID BlockID, contains string) bool {
	for _, issue := range issues {
		if issue.Severity == severity && issue.BlockID == blockID && strings.Contains(issue.Message, contains) {
			return true
		}
	}
	return false
}

func TestValidateEmptyFlow(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, nil)
	issues := flow.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestValidateCleanFlow(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "welcome", Next: "menu"}, Text: "hi"},
		Gather{
			BlockMeta:  BlockMeta{ID: "menu"},
			Prompt:     "press 1",
			MaxRetries: 3,
			Options:    []GatherOption{{Digit: "1", Target: "bye"}},
		},
		Hangup{BlockMeta: BlockMeta{ID: "bye"}},
	})
	assert.Empty(t, flow.Validate())
}

func TestValidateStructuralErrors(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "a", Next: "ghost"}, Text: "hi"},
		Say{BlockMeta: BlockMeta{ID: "a"}, Text: "dup"},
		Say{BlockMeta: BlockMeta{}, Text: "anonymous"},
		Forward{BlockMeta: BlockMeta{ID: "fwd"}},
		Unknown{BlockMeta: BlockMeta{ID: "u"}, TypeName: "teleport"},
	})
	issues := flow.Validate()

	assert.True(t, hasIssue(issues, SeverityError, "a", "successor"), "dangling next: %v", issues)
	assert.True(t, hasIssue(issues, SeverityError, "a", "duplicate"), "duplicate id: %v", issues)
	assert.True(t, hasIssue(issues, SeverityError, "", "empty id"), "empty id: %v", issues)
	assert.True(t, hasIssue(issues, SeverityError, "fwd", "no number"), "forward without number: %v", issues)
	assert.True(t, hasIssue(issues, SeverityError, "u", "unknown block type"), "unknown type: %v", issues)
}

func TestValidateGatherErrors(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Gather{
			BlockMeta:  BlockMeta{ID: "menu"},
			Prompt:     "press something",
			MaxRetries: 0,
			Options: []GatherOption{
				{Digit: "1", Target: "ghost"},
				{Digit: "1"},
			},
		},
	})
	issues := flow.Validate()

	assert.True(t, hasIssue(issues, SeverityError, "menu", "maxRetries"), "%v", issues)
	assert.True(t, hasIssue(issues, SeverityError, "menu", "duplicate gather option"), "%v", issues)
	assert.True(t, hasIssue(issues, SeverityError, "menu", "missing block"), "%v", issues)

	empty := NewFlow("f", "", true, Settings{}, []Block{
		Gather{BlockMeta: BlockMeta{ID: "menu"}, Prompt: "p", MaxRetries: 1},
	})
	assert.True(t, hasIssue(empty.Validate(), SeverityError, "menu", "no options"))
}

func TestValidateReachability(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "a", Next: "b"}, Text: "x"},
		Say{BlockMeta: BlockMeta{ID: "b", Next: "a"}, Text: "y"},
		Say{BlockMeta: BlockMeta{ID: "island"}, Text: "z"},
	})
	issues := flow.Validate()

	assert.True(t, hasIssue(issues, SeverityWarning, "a", "cycle"), "%v", issues)
	assert.True(t, hasIssue(issues, SeverityWarning, "island", "unreachable"), "%v", issues)
}

func TestValidateEntryInboundWarning(t *testing.T) {
	flow := NewFlow("f", "", true, Settings{}, []Block{
		Say{BlockMeta: BlockMeta{ID: "first", Next: "second"}, Text: "x"},
		Say{BlockMeta: BlockMeta{ID: "second", Next: "first"}, Text: "y"},
	})
	issues := flow.Validate()
	assert.True(t, hasIssue(issues, SeverityWarning, "first", "inbound"), "%v", issues)
}

func TestIssueString(t *testing.T) {
	assert.Equal(t, `error: flow has no blocks`, Issue{Severity: SeverityError, Message: "flow has no blocks"}.String())
	assert.Equal(t, `warning: block "x": unreachable`, Issue{Severity: SeverityWarning, BlockID: "x", Message: "unreachable"}.String())
}
