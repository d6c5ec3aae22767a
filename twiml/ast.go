// Package twiml models the markup dialect sent back to the telephony
// provider: an XML document with a single <Response> root whose ordered
// children are voice instructions. The package renders an AST to markup and
// parses markup back into the AST; the round trip is what the tests and the
// call simulator rely on.
package twiml

// Node is the interface for all markup AST nodes
type Node interface {
	isNode()
}

// Response is the root element
type Response struct {
	Children []Node
}

func (Response) isNode() {}

// Say outputs text-to-speech
type Say struct {
	Text  string
	Voice string
	Rate  float64 // speech rate, 0 means provider default
}

func (Say) isNode() {}

// Play plays an audio file
type Play struct {
	URL  string
	Loop int
}

func (Play) isNode() {}

// Pause waits for a specified number of seconds
type Pause struct {
	Length int
}

func (Pause) isNode() {}

// Gather collects DTMF input and posts it to Action
type Gather struct {
	Input     string // always "dtmf" in this dialect
	Timeout   int    // seconds to wait for input
	NumDigits int
	Action    string
	Method    string // "POST" or "GET"
	Children  []Node // verbs executed while gathering (the prompt)
}

func (Gather) isNode() {}

// Dial transfers the call to another party. A single destination is carried
// in Number; a simultaneous ring group is carried as nested <Number> children.
type Dial struct {
	Number   string
	Action   string
	Method   string
	Timeout  int
	Children []Node
}

func (Dial) isNode() {}

// Number is used inside <Dial> for ring groups
type Number struct {
	Number string
}

func (Number) isNode() {}

// Record records the caller's voice
type Record struct {
	MaxLength   int // seconds
	FinishOnKey string
	PlayBeep    bool
	Transcribe  bool
	Action      string
	Method      string
}

func (Record) isNode() {}

// Sms sends a text message; an empty To targets the caller's own number
type Sms struct {
	To   string
	Body string
}

func (Sms) isNode() {}

// Redirect fetches new markup from a URL
type Redirect struct {
	URL    string
	Method string
}

func (Redirect) isNode() {}

// Hangup ends the call
type Hangup struct{}

func (Hangup) isNode() {}
