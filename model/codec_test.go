// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const supportLineDoc = `{
  "id": "support-line",
  "name": "Support line",
  "isActive": true,
  "settings": {"voice": "alice"},
  "blocks": [
    {
      "id": "welcome",
      "type": "say",
      "config": {"text": "Welcome to NumSphere.", "speed": 1.2},
      "connections": ["menu"]
    },
    {
      "id": "menu",
      "type": "gather",
      "config": {
        "prompt": "Press 1 for sales.",
        "maxRetries": 2,
        "options": [
          {"digit": "1", "text": "Sales", "targetBlockId": "sales"}
        ]
      }
    },
    {
      "id": "sales",
      "type": "forward",
      "config": {"number": "+15551234567"},
      "connections": ["bye"]
    },
    {
      "id": "bye",
      "type": "hangup"
    }
  ]
}`

func TestDecodeFlow(t *testing.T) {
	flow, err := DecodeFlow([]byte(supportLineDoc))
	require.NoError(t, err)

	assert.Equal(t, "support-line", flow.ID)
	assert.Equal(t, "Support line", flow.Name)
	assert.True(t, flow.Active)
	assert.Equal(t, "alice", flow.Settings.Voice)
	require.Len(t, flow.Blocks, 4)

	say, ok := flow.Blocks[0].(Say)
	require.True(t, ok, "first block should be a say, got %T", flow.Blocks[0])
	assert.Equal(t, BlockID("welcome"), say.ID)
	assert.Equal(t, BlockID("menu"), say.Next)
	assert.Equal(t, "Welcome to NumSphere.", say.Text)
	assert.Equal(t, 1.2, say.Speed)

	gather, ok := flow.Blocks[1].(Gather)
	require.True(t, ok, "second block should be a gather, got %T", flow.Blocks[1])
	assert.Equal(t, 2, gather.MaxRetries)
	require.Len(t, gather.Options, 1)
	assert.Equal(t, GatherOption{Digit: "1", Label: "Sales", Target: "sales"}, gather.Options[0])

	fwd, ok := flow.Blocks[2].(Forward)
	require.True(t, ok, "third block should be a forward, got %T", flow.Blocks[2])
	assert.Equal(t, "+15551234567", fwd.Number)
	assert.Equal(t, DefaultForwardTimeout, fwd.TimeoutSeconds, "timeout should default when omitted")

	_, ok = flow.Blocks[3].(Hangup)
	assert.True(t, ok, "fourth block should be a hangup, got %T", flow.Blocks[3])
}

func TestDecodeFlowDefaults(t *testing.T) {
	doc := `{
	  "id": "defaults",
	  "blocks": [
	    {"id": "p", "type": "pause"},
	    {"id": "h", "type": "hold"},
	    {"id": "r", "type": "record"},
	    {"id": "g", "type": "gather", "config": {"prompt": "hi", "options": [{"digit": "1"}]}}
	  ]
	}`
	flow, err := DecodeFlow([]byte(doc))
	require.NoError(t, err)
	require.Len(t, flow.Blocks, 4)

	assert.Equal(t, DefaultPauseSeconds, flow.Blocks[0].(Pause).Seconds)
	assert.Equal(t, DefaultHoldLoop, flow.Blocks[1].(Hold).Loop)

	rec := flow.Blocks[2].(Record)
	assert.Equal(t, DefaultRecordMaxLength, rec.MaxLengthSeconds)
	assert.Equal(t, DefaultRecordFinishKey, rec.FinishOnKey)

	assert.Equal(t, DefaultGatherRetries, flow.Blocks[3].(Gather).MaxRetries)
}

func TestDecodeFlowUnknownType(t *testing.T) {
	doc := `{
	  "id": "f",
	  "blocks": [
	    {"id": "x", "type": "teleport", "connections": ["y"]},
	    {"id": "y", "type": "hangup"}
	  ]
	}`
	flow, err := DecodeFlow([]byte(doc))
	require.NoError(t, err, "unrecognized block types must not fail the document")

	unk, ok := flow.Blocks[0].(Unknown)
	require.True(t, ok, "got %T", flow.Blocks[0])
	assert.Equal(t, "teleport", unk.TypeName)
	assert.Equal(t, BlockID("y"), unk.Next)
}

func TestDecodeFlowMultiForwardStrategy(t *testing.T) {
	doc := `{
	  "id": "f",
	  "blocks": [
	    {"id": "a", "type": "multi_forward", "config": {"numbers": ["+1"], "forwardStrategy": "sequential"}},
	    {"id": "b", "type": "multi_forward", "config": {"numbers": ["+1"], "forwardStrategy": "bogus"}},
	    {"id": "c", "type": "multi_forward", "config": {"numbers": ["+1"]}}
	  ]
	}`
	flow, err := DecodeFlow([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, RingSequential, flow.Blocks[0].(MultiForward).Strategy)
	assert.Equal(t, RingAll, flow.Blocks[1].(MultiForward).Strategy, "unrecognized strategy falls back to ring-all")
	assert.Equal(t, RingAll, flow.Blocks[2].(MultiForward).Strategy)
}

func TestDecodeFlowBadJSON(t *testing.T) {
	_, err := DecodeFlow([]byte(`{"blocks": [`))
	assert.Error(t, err)
}

func TestEncodeFlowRoundTrip(t *testing.T) {
	flow, err := DecodeFlow([]byte(supportLineDoc))
	require.NoError(t, err)

	data, err := EncodeFlow(flow)
	require.NoError(t, err)

	again, err := DecodeFlow(data)
	require.NoError(t, err)

	assert.Equal(t, flow.ID, again.ID)
	assert.Equal(t, flow.Settings, again.Settings)
	assert.Equal(t, flow.Blocks, again.Blocks)
}
