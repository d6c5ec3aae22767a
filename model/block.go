// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

package model

// BlockID identifies a block within a single flow.
type BlockID string

func (id BlockID) String() string {
	return string(id)
}

// BlockType is the discriminator of the block union.
type BlockType string

const (
	TypeSay          BlockType = "say"
	TypePause        BlockType = "pause"
	TypeForward      BlockType = "forward"
	TypeMultiForward BlockType = "multi_forward"
	TypeHold         BlockType = "hold"
	TypeRecord       BlockType = "record"
	TypePlay         BlockType = "play"
	TypeGather       BlockType = "gather"
	TypeSms          BlockType = "sms"
	TypeHangup       BlockType = "hangup"

	// TypeUnknown marks a block whose stored type is not recognized.
	// Such blocks survive decoding so the interpreter can degrade
	// gracefully instead of rejecting the whole flow.
	TypeUnknown BlockType = "unknown"
)

// ForwardStrategy selects how a multi-destination forward rings its numbers.
type ForwardStrategy string

const (
	// RingAll dials every number at once; first to answer wins.
	RingAll ForwardStrategy = "simultaneous"
	// RingSequential dials one number at a time with a pause between attempts.
	RingSequential ForwardStrategy = "sequential"
)

// Block is the interface for all call-flow block variants.
type Block interface {
	Meta() BlockMeta
	Type() BlockType
	isBlock()
}

// BlockMeta carries the fields shared by every block: its ID and the ID of
// its single successor. Next is empty for terminal blocks. The interpreter
// never follows Next on a Hangup block regardless of its contents.
type BlockMeta struct {
	ID   BlockID
	Next BlockID
}

func (m BlockMeta) Meta() BlockMeta { return m }
func (BlockMeta) isBlock()          {}

// Say speaks synthesized text to the caller.
type Say struct {
	BlockMeta
	Text  string
	Voice string  // empty means use the flow default
	Speed float64 // clamped to [0.5, 2.0] at render time; 0 means 1.0
}

func (Say) Type() BlockType { return TypeSay }

// Pause plays silence for a number of seconds.
type Pause struct {
	BlockMeta
	Seconds int
}

func (Pause) Type() BlockType { return TypePause }

// Forward transfers the call to a single destination number.
type Forward struct {
	BlockMeta
	Number         string
	TimeoutSeconds int
}

func (Forward) Type() BlockType { return TypeForward }

// MultiForward transfers the call to several destination numbers, either
// ringing them all simultaneously or one at a time.
type MultiForward struct {
	BlockMeta
	Numbers        []string
	Strategy       ForwardStrategy
	TimeoutSeconds int
}

func (MultiForward) Type() BlockType { return TypeMultiForward }

// Hold speaks a message and then loops hold music.
type Hold struct {
	BlockMeta
	Message  string
	Voice    string
	Music    string // preset name, resolved by the interpreter
	MusicURL string // custom URL, takes precedence over Music
	Loop     int
}

func (Hold) Type() BlockType { return TypeHold }

// Record plays an optional prompt and then records the caller.
type Record struct {
	BlockMeta
	Prompt           string
	Voice            string
	MaxLengthSeconds int
	FinishOnKey      string
}

func (Record) Type() BlockType { return TypeRecord }

// Play plays an audio URL verbatim.
type Play struct {
	BlockMeta
	URL  string
	Loop int
}

func (Play) Type() BlockType { return TypePlay }

// GatherOption maps one DTMF digit to a label and an optional target block.
type GatherOption struct {
	Digit  string
	Label  string
	Target BlockID // empty means: speak the label and hang up
}

// Gather collects a single DTMF digit from the caller. It is the only block
// that suspends a response; the caller's digit arrives on a later request.
type Gather struct {
	BlockMeta
	Prompt         string
	Voice          string
	MaxRetries     int
	RetryMessage   string
	GoodbyeMessage string
	Options        []GatherOption
}

func (Gather) Type() BlockType { return TypeGather }

// Option returns the option configured for the given digit.
func (g Gather) Option(digit string) (GatherOption, bool) {
	for _, opt := range g.Options {
		if opt.Digit == digit {
			return opt, true
		}
	}
	return GatherOption{}, false
}

// Sms sends a text message. An empty To sends to the caller's own number.
type Sms struct {
	BlockMeta
	To   string
	Body string
}

func (Sms) Type() BlockType { return TypeSms }

// Hangup terminates the call. Traversal stops here unconditionally.
type Hangup struct {
	BlockMeta
}

func (Hangup) Type() BlockType { return TypeHangup }

// Unknown preserves a block whose stored type is not recognized. The
// interpreter renders a fail-safe spoken message for it.
type Unknown struct {
	BlockMeta
	TypeName string
}

func (Unknown) Type() BlockType { return TypeUnknown }
