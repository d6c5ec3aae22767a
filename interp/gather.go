// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package interp

import (
	"strings"

	"github.com/numsphere/callflow/model"
	"github.com/numsphere/callflow/twiml"
)

// Resume handles a gather continuation: the inbound event that carries the
// caller's digit (or lack of one) for a previously emitted gather. The only
// state threading turns together is the (blockId, retry) pair in the
// callback URL; everything else is recomputed from the flow.
//
// Per gather instance this is a three-way machine:
// awaiting input -> retry (bounded by maxRetries) | matched | exhausted.
func (c *Compiler) Resume(turn Turn) *twiml.Response {
	block, ok := c.flow.Block(turn.ResumeBlock)
	if !ok {
		c.log.Warn().Str("flow", c.flow.ID).Str("block", turn.ResumeBlock.String()).
			Msg("resume block does not exist")
		return c.Fallback(MsgConfigError)
	}

	gather, ok := block.(model.Gather)
	if !ok {
		c.log.Warn().Str("flow", c.flow.ID).Str("block", turn.ResumeBlock.String()).
			Str("type", string(block.Type())).
			Msg("resume block is not a gather")
		return c.Fallback(MsgConfigError)
	}

	digits := strings.TrimSpace(turn.Digits)
	if digits == "" {
		// Caller pressed nothing before the timeout.
		return c.retryOrGiveUp(gather, turn, "")
	}

	opt, ok := gather.Option(digits)
	if !ok {
		return c.retryOrGiveUp(gather, turn, digits)
	}

	if opt.Target == "" {
		// Option with no destination: acknowledge and end the call.
		ack := opt.Label
		if ack == "" {
			ack = MsgDefaultGoodbye
		}
		return &twiml.Response{Children: []twiml.Node{
			&twiml.Say{Text: ack, Voice: c.voice(gather.Voice)},
			&twiml.Hangup{},
		}}
	}

	target, ok := c.flow.Block(opt.Target)
	if !ok {
		c.log.Warn().Str("flow", c.flow.ID).Str("block", gather.ID.String()).
			Str("target", opt.Target.String()).Str("digit", digits).
			Msg("gather option targets a missing block")
		return c.Fallback(MsgConfigError)
	}

	c.log.Debug().Str("flow", c.flow.ID).Str("block", gather.ID.String()).
		Str("digit", digits).Str("target", opt.Target.String()).
		Msg("gather digit matched")
	return c.CompileFrom(target, turn)
}

// retryOrGiveUp replays the gather with an incremented retry counter, or
// speaks the goodbye message once retries are exhausted. When the caller
// pressed a digit that matched nothing, the valid options are read back
// first so they can self-correct.
func (c *Compiler) retryOrGiveUp(gather model.Gather, turn Turn, badDigits string) *twiml.Response {
	maxRetries := gather.MaxRetries
	if maxRetries <= 0 {
		maxRetries = model.DefaultGatherRetries
	}

	attempt := turn.Retry + 1
	if attempt >= maxRetries {
		goodbye := gather.GoodbyeMessage
		if goodbye == "" {
			goodbye = MsgDefaultGoodbye
		}
		c.log.Debug().Str("flow", c.flow.ID).Str("block", gather.ID.String()).
			Int("retries", turn.Retry).Msg("gather retries exhausted")
		return &twiml.Response{Children: []twiml.Node{
			&twiml.Say{Text: goodbye, Voice: c.voice(gather.Voice)},
			&twiml.Hangup{},
		}}
	}

	resp := &twiml.Response{}
	voice := c.voice(gather.Voice)

	if badDigits != "" {
		if menu := optionsMenu(gather); menu != "" {
			resp.Children = append(resp.Children, &twiml.Say{Text: menu, Voice: voice})
		}
	}

	retryMsg := gather.RetryMessage
	if retryMsg == "" {
		retryMsg = "Sorry, I didn't get that. Please try again."
	}
	resp.Children = append(resp.Children, &twiml.Say{Text: retryMsg, Voice: voice})

	c.appendGather(resp, gather, attempt)
	return resp
}

// optionsMenu reads the configured options back to the caller:
// "Press 1 for Sales. Press 2 for Support."
func optionsMenu(gather model.Gather) string {
	var b strings.Builder
	for _, opt := range gather.Options {
		if opt.Digit == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("Press ")
		b.WriteString(opt.Digit)
		if opt.Label != "" {
			b.WriteString(" for ")
			b.WriteString(opt.Label)
		}
		b.WriteByte('.')
	}
	return b.String()
}
