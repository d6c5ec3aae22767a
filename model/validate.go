// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package model

import "fmt"

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from Validate.
type Issue struct {
	Severity Severity
	BlockID  BlockID // empty for flow-level issues
	Message  string
}

func (i Issue) String() string {
	if i.BlockID == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: block %q: %s", i.Severity, i.BlockID, i.Message)
}

// Validate reports configuration problems in the flow. Errors describe flows
// that will degrade to spoken fallbacks at runtime; warnings describe flows
// that run but are almost certainly authoring mistakes. The interpreter never
// requires a valid flow - it degrades gracefully either way - so validation
// is a load-time and tooling concern.
func (f *Flow) Validate() []Issue {
	var issues []Issue

	if len(f.Blocks) == 0 {
		return []Issue{{Severity: SeverityError, Message: "flow has no blocks"}}
	}

	seen := make(map[BlockID]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		id := b.Meta().ID
		if id == "" {
			issues = append(issues, Issue{Severity: SeverityError, Message: "block has an empty id"})
			continue
		}
		if seen[id] {
			issues = append(issues, Issue{Severity: SeverityError, BlockID: id, Message: "duplicate block id"})
		}
		seen[id] = true
	}

	inbound := make(map[BlockID]int, len(f.Blocks))
	for _, b := range f.Blocks {
		issues = append(issues, f.validateBlock(b, inbound)...)
	}

	if first, ok := f.Entry(); ok && inbound[first.Meta().ID] > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			BlockID:  first.Meta().ID,
			Message:  "entry block has inbound connections; the first declared block answers fresh calls, check block order",
		})
	}

	issues = append(issues, f.reachability()...)
	return issues
}

func (f *Flow) validateBlock(b Block, inbound map[BlockID]int) []Issue {
	var issues []Issue
	meta := b.Meta()

	if meta.Next != "" {
		inbound[meta.Next]++
		if _, ok := f.Block(meta.Next); !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				BlockID:  meta.ID,
				Message:  fmt.Sprintf("successor %q does not exist", meta.Next),
			})
		}
	}

	switch v := b.(type) {
	case Say:
		if v.Text == "" {
			issues = append(issues, Issue{Severity: SeverityWarning, BlockID: meta.ID, Message: "say block has no text"})
		}
	case Forward:
		if v.Number == "" {
			issues = append(issues, Issue{Severity: SeverityError, BlockID: meta.ID, Message: "forward block has no number"})
		}
	case MultiForward:
		nonEmpty := 0
		for _, n := range v.Numbers {
			if n != "" {
				nonEmpty++
			}
		}
		if nonEmpty == 0 {
			issues = append(issues, Issue{Severity: SeverityError, BlockID: meta.ID, Message: "multi_forward block has no numbers"})
		}
	case Play:
		if v.URL == "" {
			issues = append(issues, Issue{Severity: SeverityError, BlockID: meta.ID, Message: "play block has no url"})
		}
	case Sms:
		if v.Body == "" {
			issues = append(issues, Issue{Severity: SeverityWarning, BlockID: meta.ID, Message: "sms block has no body"})
		}
	case Gather:
		if len(v.Options) == 0 {
			issues = append(issues, Issue{Severity: SeverityError, BlockID: meta.ID, Message: "gather block has no options"})
		}
		if v.MaxRetries < 1 {
			issues = append(issues, Issue{Severity: SeverityError, BlockID: meta.ID, Message: "gather maxRetries must be at least 1"})
		}
		digits := make(map[string]bool, len(v.Options))
		for _, opt := range v.Options {
			if digits[opt.Digit] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					BlockID:  meta.ID,
					Message:  fmt.Sprintf("duplicate gather option for digit %q", opt.Digit),
				})
			}
			digits[opt.Digit] = true
			if opt.Target != "" {
				inbound[opt.Target]++
				if _, ok := f.Block(opt.Target); !ok {
					issues = append(issues, Issue{
						Severity: SeverityError,
						BlockID:  meta.ID,
						Message:  fmt.Sprintf("gather option %q targets missing block %q", opt.Digit, opt.Target),
					})
				}
			}
		}
	case Unknown:
		issues = append(issues, Issue{
			Severity: SeverityError,
			BlockID:  meta.ID,
			Message:  fmt.Sprintf("unknown block type %q", v.TypeName),
		})
	}

	return issues
}

// reachability walks from the entry block across Next edges and gather
// targets, reporting unreachable blocks and cycles.
func (f *Flow) reachability() []Issue {
	var issues []Issue

	entry, ok := f.Entry()
	if !ok {
		return nil
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[BlockID]int, len(f.Blocks))

	var walk func(b Block)
	walk = func(b Block) {
		id := b.Meta().ID
		switch state[id] {
		case inStack:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				BlockID:  id,
				Message:  "block participates in a cycle; playback truncates when the loop is re-entered",
			})
			return
		case done:
			return
		}
		state[id] = inStack

		if next, ok := f.Successor(b); ok {
			walk(next)
		}
		if g, isGather := b.(Gather); isGather {
			for _, opt := range g.Options {
				if target, ok := f.Block(opt.Target); ok {
					walk(target)
				}
			}
		}
		state[id] = done
	}
	walk(entry)

	for _, b := range f.Blocks {
		if state[b.Meta().ID] == unvisited {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				BlockID:  b.Meta().ID,
				Message:  "block is unreachable from the entry block",
			})
		}
	}

	return issues
}
