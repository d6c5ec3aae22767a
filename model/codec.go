// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// The stored flow format is the JSON the dashboard has always written. Its
// blocks carry a `connections` array even though only the first entry was
// ever honored; decoding keeps that contract by reading connections[0] into
// BlockMeta.Next and encoding writes Next back as a one-element array so
// saved flows round-trip unchanged.

type flowDoc struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	IsActive bool        `json:"isActive"`
	Settings settingsDoc `json:"settings"`
	Blocks   []blockDoc  `json:"blocks"`
}

type settingsDoc struct {
	Voice string `json:"voice,omitempty"`
}

type blockDoc struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Config      json.RawMessage `json:"config,omitempty"`
	Connections []string        `json:"connections,omitempty"`
}

type sayConfig struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

type pauseConfig struct {
	Duration int `json:"duration,omitempty"`
}

type forwardConfig struct {
	Number         string `json:"number"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

type multiForwardConfig struct {
	Numbers         []string `json:"numbers"`
	ForwardStrategy string   `json:"forwardStrategy,omitempty"`
	TimeoutSeconds  int      `json:"timeoutSeconds,omitempty"`
}

type holdConfig struct {
	Message       string `json:"message,omitempty"`
	Voice         string `json:"voice,omitempty"`
	HoldMusic     string `json:"holdMusic,omitempty"`
	HoldMusicURL  string `json:"holdMusicUrl,omitempty"`
	HoldMusicLoop int    `json:"holdMusicLoop,omitempty"`
}

type recordConfig struct {
	Prompt           string `json:"prompt,omitempty"`
	Voice            string `json:"voice,omitempty"`
	MaxLengthSeconds int    `json:"maxLengthSeconds,omitempty"`
	FinishOnKey      string `json:"finishOnKey,omitempty"`
}

type playConfig struct {
	URL  string `json:"url"`
	Loop int    `json:"loop,omitempty"`
}

type gatherOptionDoc struct {
	Digit         string `json:"digit"`
	Text          string `json:"text,omitempty"`
	TargetBlockID string `json:"targetBlockId,omitempty"`
}

type gatherConfig struct {
	Prompt         string            `json:"prompt"`
	Voice          string            `json:"voice,omitempty"`
	Options        []gatherOptionDoc `json:"options,omitempty"`
	MaxRetries     int               `json:"maxRetries,omitempty"`
	RetryMessage   string            `json:"retryMessage,omitempty"`
	GoodbyeMessage string            `json:"goodbyeMessage,omitempty"`
}

type smsConfig struct {
	To   string `json:"to,omitempty"`
	Body string `json:"body"`
}

// Defaults baked into the stored format.
const (
	DefaultPauseSeconds    = 2
	DefaultForwardTimeout  = 30
	DefaultHoldLoop        = 10
	DefaultGatherRetries   = 3
	DefaultRecordMaxLength = 120
	DefaultRecordFinishKey = "#"
)

// DecodeFlow parses a stored flow document into a Flow. Blocks with an
// unrecognized type decode into Unknown rather than failing the document.
func DecodeFlow(data []byte) (*Flow, error) {
	var doc flowDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode flow document")
	}

	blocks := make([]Block, 0, len(doc.Blocks))
	for _, bd := range doc.Blocks {
		block, err := decodeBlock(bd)
		if err != nil {
			return nil, errors.Wrapf(err, "decode block %q", bd.ID)
		}
		blocks = append(blocks, block)
	}

	return NewFlow(doc.ID, doc.Name, doc.IsActive, Settings{Voice: doc.Settings.Voice}, blocks), nil
}

func decodeBlock(bd blockDoc) (Block, error) {
	meta := BlockMeta{ID: BlockID(bd.ID)}
	if len(bd.Connections) > 0 {
		meta.Next = BlockID(bd.Connections[0])
	}

	raw := bd.Config
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch BlockType(bd.Type) {
	case TypeSay:
		var c sayConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return Say{BlockMeta: meta, Text: c.Text, Voice: c.Voice, Speed: c.Speed}, nil

	case TypePause:
		var c pauseConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.Duration <= 0 {
			c.Duration = DefaultPauseSeconds
		}
		return Pause{BlockMeta: meta, Seconds: c.Duration}, nil

	case TypeForward:
		var c forwardConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = DefaultForwardTimeout
		}
		return Forward{BlockMeta: meta, Number: c.Number, TimeoutSeconds: c.TimeoutSeconds}, nil

	case TypeMultiForward:
		var c multiForwardConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		strategy := ForwardStrategy(c.ForwardStrategy)
		if strategy != RingSequential {
			strategy = RingAll
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = DefaultForwardTimeout
		}
		return MultiForward{BlockMeta: meta, Numbers: c.Numbers, Strategy: strategy, TimeoutSeconds: c.TimeoutSeconds}, nil

	case TypeHold:
		var c holdConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.HoldMusicLoop <= 0 {
			c.HoldMusicLoop = DefaultHoldLoop
		}
		return Hold{BlockMeta: meta, Message: c.Message, Voice: c.Voice, Music: c.HoldMusic, MusicURL: c.HoldMusicURL, Loop: c.HoldMusicLoop}, nil

	case TypeRecord:
		var c recordConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.MaxLengthSeconds <= 0 {
			c.MaxLengthSeconds = DefaultRecordMaxLength
		}
		if c.FinishOnKey == "" {
			c.FinishOnKey = DefaultRecordFinishKey
		}
		return Record{BlockMeta: meta, Prompt: c.Prompt, Voice: c.Voice, MaxLengthSeconds: c.MaxLengthSeconds, FinishOnKey: c.FinishOnKey}, nil

	case TypePlay:
		var c playConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return Play{BlockMeta: meta, URL: c.URL, Loop: c.Loop}, nil

	case TypeGather:
		var c gatherConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.MaxRetries <= 0 {
			c.MaxRetries = DefaultGatherRetries
		}
		opts := make([]GatherOption, 0, len(c.Options))
		for _, od := range c.Options {
			opts = append(opts, GatherOption{Digit: od.Digit, Label: od.Text, Target: BlockID(od.TargetBlockID)})
		}
		return Gather{
			BlockMeta:      meta,
			Prompt:         c.Prompt,
			Voice:          c.Voice,
			MaxRetries:     c.MaxRetries,
			RetryMessage:   c.RetryMessage,
			GoodbyeMessage: c.GoodbyeMessage,
			Options:        opts,
		}, nil

	case TypeSms:
		var c smsConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return Sms{BlockMeta: meta, To: c.To, Body: c.Body}, nil

	case TypeHangup:
		return Hangup{BlockMeta: meta}, nil

	default:
		return Unknown{BlockMeta: meta, TypeName: bd.Type}, nil
	}
}

// EncodeFlow serializes a flow back into the stored document format.
func EncodeFlow(f *Flow) ([]byte, error) {
	doc := flowDoc{
		ID:       f.ID,
		Name:     f.Name,
		IsActive: f.Active,
		Settings: settingsDoc{Voice: f.Settings.Voice},
		Blocks:   make([]blockDoc, 0, len(f.Blocks)),
	}

	for _, b := range f.Blocks {
		bd, err := encodeBlock(b)
		if err != nil {
			return nil, errors.Wrapf(err, "encode block %q", b.Meta().ID)
		}
		doc.Blocks = append(doc.Blocks, bd)
	}

	return json.MarshalIndent(doc, "", "  ")
}

func encodeBlock(b Block) (blockDoc, error) {
	meta := b.Meta()
	bd := blockDoc{ID: string(meta.ID)}
	if meta.Next != "" {
		bd.Connections = []string{string(meta.Next)}
	}

	var cfg any
	switch v := b.(type) {
	case Say:
		bd.Type = string(TypeSay)
		cfg = sayConfig{Text: v.Text, Voice: v.Voice, Speed: v.Speed}
	case Pause:
		bd.Type = string(TypePause)
		cfg = pauseConfig{Duration: v.Seconds}
	case Forward:
		bd.Type = string(TypeForward)
		cfg = forwardConfig{Number: v.Number, TimeoutSeconds: v.TimeoutSeconds}
	case MultiForward:
		bd.Type = string(TypeMultiForward)
		cfg = multiForwardConfig{Numbers: v.Numbers, ForwardStrategy: string(v.Strategy), TimeoutSeconds: v.TimeoutSeconds}
	case Hold:
		bd.Type = string(TypeHold)
		cfg = holdConfig{Message: v.Message, Voice: v.Voice, HoldMusic: v.Music, HoldMusicURL: v.MusicURL, HoldMusicLoop: v.Loop}
	case Record:
		bd.Type = string(TypeRecord)
		cfg = recordConfig{Prompt: v.Prompt, Voice: v.Voice, MaxLengthSeconds: v.MaxLengthSeconds, FinishOnKey: v.FinishOnKey}
	case Play:
		bd.Type = string(TypePlay)
		cfg = playConfig{URL: v.URL, Loop: v.Loop}
	case Gather:
		bd.Type = string(TypeGather)
		opts := make([]gatherOptionDoc, 0, len(v.Options))
		for _, o := range v.Options {
			opts = append(opts, gatherOptionDoc{Digit: o.Digit, Text: o.Label, TargetBlockID: string(o.Target)})
		}
		cfg = gatherConfig{
			Prompt:         v.Prompt,
			Voice:          v.Voice,
			Options:        opts,
			MaxRetries:     v.MaxRetries,
			RetryMessage:   v.RetryMessage,
			GoodbyeMessage: v.GoodbyeMessage,
		}
	case Sms:
		bd.Type = string(TypeSms)
		cfg = smsConfig{To: v.To, Body: v.Body}
	case Hangup:
		bd.Type = string(TypeHangup)
		cfg = struct{}{}
	case Unknown:
		bd.Type = v.TypeName
		cfg = struct{}{}
	default:
		return blockDoc{}, errors.Errorf("unencodable block type %T", b)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return blockDoc{}, err
	}
	bd.Config = raw
	return bd, nil
}
