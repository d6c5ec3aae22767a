// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

// Package store defines the persistence collaborators the call-flow core
// reads from. Any key-value or relational backend satisfying these
// signatures will do; the interpreter only needs a consistent snapshot of a
// flow within one turn.
package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/numsphere/callflow/model"
)

// ErrNotFound is returned when a number or flow is not known to the store.
var ErrNotFound = errors.New("not found")

// FlowStore resolves the flow to run for a called number.
type FlowStore interface {
	// ActiveFlowForNumber returns the active flow bound to the number, or
	// ErrNotFound when the number has no active binding.
	ActiveFlowForNumber(ctx context.Context, number string) (*model.Flow, error)
}

// NumberStore answers whether a phone number is provisioned and active.
type NumberStore interface {
	IsNumberActive(ctx context.Context, number string) (bool, error)
}
