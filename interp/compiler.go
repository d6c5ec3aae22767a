// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

// Package interp turns a call flow into the markup document for one turn of
// a phone call. Compilation is pure and synchronous: it reads the flow,
// never mutates it, and always produces a well-formed response, degrading to
// a spoken fallback on any configuration error.
package interp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/numsphere/callflow/model"
	"github.com/numsphere/callflow/twiml"
)

// FallbackVoice is used when neither the block nor the flow names a voice.
const FallbackVoice = "alice"

const (
	// DefaultCallbackPath receives gather continuations when no path is
	// configured.
	DefaultCallbackPath = "/voice"

	gatherTimeoutSeconds = 5

	minSayRate = 0.5
	maxSayRate = 2.0
)

// Spoken fallbacks for the error taxonomy: a caller always hears a sentence,
// never silence or a raw protocol error.
const (
	MsgUnknownBlock   = "We're sorry, we cannot process this part of your call. Goodbye."
	MsgConfigError    = "We're sorry, this call flow is not configured correctly. Goodbye."
	MsgDefaultGoodbye = "Thank you for calling. Goodbye."
)

// Hold music presets the dashboard offers by name.
var holdMusicPresets = map[string]string{
	"classical": "https://media.numsphere.io/hold/classical.mp3",
	"jazz":      "https://media.numsphere.io/hold/jazz.mp3",
	"ambient":   "https://media.numsphere.io/hold/ambient.mp3",
	"upbeat":    "https://media.numsphere.io/hold/upbeat.mp3",
}

const defaultHoldMusic = "ambient"

// Turn is the context of one inbound event, reconstructed from the request
// on every turn; nothing here survives the HTTP round trip.
type Turn struct {
	CallID string
	From   string
	To     string

	// Digits the caller supplied; empty on a fresh call or a gather timeout.
	Digits string

	// ResumeBlock and Retry are the continuation carried in the gather
	// callback URL. ResumeBlock is empty on a fresh call.
	ResumeBlock model.BlockID
	Retry       int
}

// Compiler compiles blocks of a single flow into markup responses.
type Compiler struct {
	flow         *model.Flow
	callbackPath string
	defaultVoice string
	log          zerolog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCallbackPath sets the path gather continuations post back to.
func WithCallbackPath(path string) Option {
	return func(c *Compiler) {
		if path != "" {
			c.callbackPath = path
		}
	}
}

// WithDefaultVoice sets the voice used when both the block and the flow
// settings omit one.
func WithDefaultVoice(voice string) Option {
	return func(c *Compiler) {
		if voice != "" {
			c.defaultVoice = voice
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

// New creates a compiler for one flow.
func New(flow *model.Flow, opts ...Option) *Compiler {
	c := &Compiler{
		flow:         flow,
		callbackPath: DefaultCallbackPath,
		defaultVoice: FallbackVoice,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileEntry compiles a fresh call starting at the flow's entry block.
func (c *Compiler) CompileEntry(turn Turn) *twiml.Response {
	entry, ok := c.flow.Entry()
	if !ok {
		c.log.Warn().Str("flow", c.flow.ID).Msg("flow has no blocks")
		return c.Fallback(MsgConfigError)
	}
	return c.CompileFrom(entry, turn)
}

// CompileFrom walks the graph from start, rendering each block and following
// single successors until a terminal block, a suspend point, or a repeated
// block ID. Revisiting a block truncates the walk silently: the priority is
// always producing some valid response within one pass.
func (c *Compiler) CompileFrom(start model.Block, turn Turn) *twiml.Response {
	resp := &twiml.Response{}
	visited := make(map[model.BlockID]bool)

	block := start
	for block != nil {
		id := block.Meta().ID
		if visited[id] {
			c.log.Debug().Str("flow", c.flow.ID).Str("block", id.String()).Msg("cycle detected, truncating walk")
			return resp
		}
		visited[id] = true

		if done := c.render(resp, block, turn); done {
			return resp
		}

		next, ok := c.flow.Successor(block)
		if !ok {
			return resp
		}
		block = next
	}
	return resp
}

// render appends the markup for one block. It returns true when traversal
// must stop at this block (terminal, suspend point, or fail-safe).
func (c *Compiler) render(resp *twiml.Response, block model.Block, turn Turn) bool {
	switch v := block.(type) {
	case model.Say:
		resp.Children = append(resp.Children, &twiml.Say{
			Text:  v.Text,
			Voice: c.voice(v.Voice),
			Rate:  clampRate(v.Speed),
		})
		return false

	case model.Pause:
		seconds := v.Seconds
		if seconds <= 0 {
			seconds = model.DefaultPauseSeconds
		}
		resp.Children = append(resp.Children, &twiml.Pause{Length: seconds})
		return false

	case model.Forward:
		if strings.TrimSpace(v.Number) == "" {
			return c.failSafe(resp, block, "forward block has no number")
		}
		resp.Children = append(resp.Children, &twiml.Dial{
			Number:  v.Number,
			Timeout: forwardTimeout(v.TimeoutSeconds),
		})
		return false

	case model.MultiForward:
		return c.renderMultiForward(resp, v)

	case model.Hold:
		if v.Message != "" {
			resp.Children = append(resp.Children, &twiml.Say{
				Text:  v.Message,
				Voice: c.voice(v.Voice),
			})
		}
		loop := v.Loop
		if loop <= 0 {
			loop = model.DefaultHoldLoop
		}
		resp.Children = append(resp.Children, &twiml.Play{
			URL:  holdMusicURL(v),
			Loop: loop,
		})
		return false

	case model.Record:
		if v.Prompt != "" {
			resp.Children = append(resp.Children, &twiml.Say{
				Text:  v.Prompt,
				Voice: c.voice(v.Voice),
			})
		}
		finishKey := v.FinishOnKey
		if finishKey == "" {
			finishKey = model.DefaultRecordFinishKey
		}
		maxLength := v.MaxLengthSeconds
		if maxLength <= 0 {
			maxLength = model.DefaultRecordMaxLength
		}
		resp.Children = append(resp.Children, &twiml.Record{
			MaxLength:   maxLength,
			FinishOnKey: finishKey,
			PlayBeep:    true,
			Transcribe:  true,
		})
		return false

	case model.Play:
		if strings.TrimSpace(v.URL) == "" {
			return c.failSafe(resp, block, "play block has no url")
		}
		resp.Children = append(resp.Children, &twiml.Play{URL: v.URL, Loop: v.Loop})
		return false

	case model.Sms:
		to := v.To
		if to == "" {
			to = turn.From
		}
		resp.Children = append(resp.Children, &twiml.Sms{To: to, Body: v.Body})
		return false

	case model.Gather:
		// Suspend point: the caller's digit arrives as a separate inbound
		// event addressed at this block. Nothing past the gather renders.
		c.appendGather(resp, v, 0)
		return true

	case model.Hangup:
		resp.Children = append(resp.Children, &twiml.Hangup{})
		return true

	case model.Unknown:
		return c.failSafe(resp, block, fmt.Sprintf("unknown block type %q", v.TypeName))

	default:
		return c.failSafe(resp, block, fmt.Sprintf("unhandled block type %T", block))
	}
}

func (c *Compiler) renderMultiForward(resp *twiml.Response, v model.MultiForward) bool {
	numbers := make([]string, 0, len(v.Numbers))
	for _, n := range v.Numbers {
		if strings.TrimSpace(n) != "" {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return c.failSafe(resp, v, "multi_forward block has no numbers")
	}

	timeout := forwardTimeout(v.TimeoutSeconds)

	if v.Strategy == model.RingSequential {
		// Ring-down: one number at a time with a short breath between
		// attempts. The provider falls through to the next dial when the
		// previous one goes unanswered.
		for i, n := range numbers {
			if i > 0 {
				resp.Children = append(resp.Children, &twiml.Pause{Length: 1})
			}
			resp.Children = append(resp.Children, &twiml.Dial{Number: n, Timeout: timeout})
		}
		return false
	}

	// Ring group: every number dialed together, first to answer wins.
	dial := &twiml.Dial{Timeout: timeout}
	for _, n := range numbers {
		dial.Children = append(dial.Children, &twiml.Number{Number: n})
	}
	resp.Children = append(resp.Children, dial)
	return false
}

// appendGather emits the collect-input instruction plus a self-redirect so a
// timeout without input still reaches the no-input transition instead of
// depending on the provider's end-of-document behavior.
func (c *Compiler) appendGather(resp *twiml.Response, g model.Gather, retry int) {
	action := c.callbackURL(g.Meta().ID, retry)
	resp.Children = append(resp.Children,
		&twiml.Gather{
			Input:     "dtmf",
			NumDigits: 1,
			Timeout:   gatherTimeoutSeconds,
			Action:    action,
			Method:    "POST",
			Children: []twiml.Node{
				&twiml.Say{Text: g.Prompt, Voice: c.voice(g.Voice)},
			},
		},
		&twiml.Redirect{URL: action, Method: "POST"},
	)
}

// failSafe renders the generic cannot-process message plus hangup and halts
// traversal. Configuration errors never fail the HTTP response.
func (c *Compiler) failSafe(resp *twiml.Response, block model.Block, reason string) bool {
	c.log.Warn().
		Str("flow", c.flow.ID).
		Str("block", block.Meta().ID.String()).
		Str("reason", reason).
		Msg("degrading block to spoken fallback")
	resp.Children = append(resp.Children,
		&twiml.Say{Text: MsgUnknownBlock, Voice: c.defaultVoice},
		&twiml.Hangup{},
	)
	return true
}

// Fallback builds a standalone spoken-message-plus-hangup document.
func (c *Compiler) Fallback(text string) *twiml.Response {
	return &twiml.Response{Children: []twiml.Node{
		&twiml.Say{Text: text, Voice: c.defaultVoice},
		&twiml.Hangup{},
	}}
}

// callbackURL builds the continuation URL for a gather: the block to resume
// at and the retry count, carried entirely by the caller's round trip.
func (c *Compiler) callbackURL(id model.BlockID, retry int) string {
	q := url.Values{}
	q.Set("blockId", id.String())
	q.Set("retry", fmt.Sprintf("%d", retry))
	return c.callbackPath + "?" + q.Encode()
}

// voice resolves a block voice against the flow default and the hardcoded
// fallback.
func (c *Compiler) voice(blockVoice string) string {
	if blockVoice != "" {
		return blockVoice
	}
	if c.flow.Settings.Voice != "" {
		return c.flow.Settings.Voice
	}
	return c.defaultVoice
}

func clampRate(speed float64) float64 {
	if speed == 0 {
		return 1.0
	}
	if speed < minSayRate {
		return minSayRate
	}
	if speed > maxSayRate {
		return maxSayRate
	}
	return speed
}

func forwardTimeout(seconds int) int {
	if seconds <= 0 {
		return model.DefaultForwardTimeout
	}
	return seconds
}

func holdMusicURL(v model.Hold) string {
	if v.MusicURL != "" {
		return v.MusicURL
	}
	if u, ok := holdMusicPresets[v.Music]; ok {
		return u
	}
	return holdMusicPresets[defaultHoldMusic]
}
