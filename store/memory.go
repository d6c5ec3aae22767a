// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/numsphere/callflow/model"
)

// Memory is an in-process store. It backs the server in development and the
// tests; production deployments put a database behind the same interfaces.
type Memory struct {
	mu       sync.RWMutex
	flows    map[string]*model.Flow
	bindings map[string]string // phone number -> flow ID
	numbers  map[string]bool   // phone number -> active
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		flows:    make(map[string]*model.Flow),
		bindings: make(map[string]string),
		numbers:  make(map[string]bool),
	}
}

// PutFlow stores a flow, minting an ID when the document carries none.
// It returns the flow's ID.
func (m *Memory) PutFlow(f *model.Flow) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	m.flows[f.ID] = f
	return f.ID
}

// AddNumber provisions a phone number.
func (m *Memory) AddNumber(number string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.numbers[number] = active
}

// Bind makes flowID the one active flow for the number, replacing any
// previous binding. The number is provisioned active if it was not known.
func (m *Memory) Bind(number, flowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flows[flowID]; !ok {
		return errors.Wrapf(ErrNotFound, "flow %q", flowID)
	}
	if _, ok := m.numbers[number]; !ok {
		m.numbers[number] = true
	}
	m.bindings[number] = flowID
	return nil
}

// ActiveFlowForNumber implements FlowStore.
func (m *Memory) ActiveFlowForNumber(_ context.Context, number string) (*model.Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	flowID, ok := m.bindings[number]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "no flow bound to %q", number)
	}
	flow, ok := m.flows[flowID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "flow %q", flowID)
	}
	return flow, nil
}

// IsNumberActive implements NumberStore.
func (m *Memory) IsNumberActive(_ context.Context, number string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active, ok := m.numbers[number]
	if !ok {
		return false, nil
	}
	return active, nil
}

// LoadDir seeds the store from a directory of flow documents. Every *.json
// file except bindings.json decodes as a flow; bindings.json, when present,
// maps phone numbers to flow IDs:
//
//	{"+15550100": "main-line"}
func (m *Memory) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read flows dir %q", dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == "bindings.json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return errors.Wrapf(err, "read %q", name)
		}
		flow, err := model.DecodeFlow(data)
		if err != nil {
			return errors.Wrapf(err, "decode %q", name)
		}
		m.PutFlow(flow)
	}

	bindingsPath := filepath.Join(dir, "bindings.json")
	data, err := os.ReadFile(bindingsPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read bindings.json")
	}

	var bindings map[string]string
	if err := json.Unmarshal(data, &bindings); err != nil {
		return errors.Wrap(err, "decode bindings.json")
	}
	for number, flowID := range bindings {
		if err := m.Bind(number, flowID); err != nil {
			return errors.Wrapf(err, "bind %q", number)
		}
	}
	return nil
}
