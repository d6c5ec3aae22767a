// Package callsim drives a voice webhook endpoint the way the telephony
// provider would: POST the inbound-call form, parse the markup response, and
// press digits against the gather action URL. It exists for integration
// tests and for poking a running server from the CLI.
package callsim

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/numsphere/callflow/twiml"
)

// Caller simulates one phone call against a voice endpoint.
type Caller struct {
	client   WebhookClient
	endpoint string
	from     string
	to       string
	callSID  string
}

// Option configures a Caller.
type Option func(*Caller)

// WithClient swaps the webhook client (tests inject httptest-backed ones).
func WithClient(client WebhookClient) Option {
	return func(c *Caller) {
		c.client = client
	}
}

// NewCaller creates a caller for one simulated call. endpoint is the
// absolute URL of the voice webhook; from and to are E.164-ish numbers.
func NewCaller(endpoint, from, to string, opts ...Option) *Caller {
	c := &Caller{
		client:   NewDefaultWebhookClient(10 * time.Second),
		endpoint: endpoint,
		from:     from,
		to:       to,
		callSID:  "CA" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallSID returns the simulated provider call ID.
func (c *Caller) CallSID() string {
	return c.callSID
}

// CallTurn is one request/response round trip of the simulated call.
type CallTurn struct {
	URL string
	Raw []byte
	Doc *twiml.Response
}

// Gather returns the collect-input instruction of this turn, if any.
func (t *CallTurn) Gather() (*twiml.Gather, bool) {
	for _, node := range t.Doc.Children {
		if g, ok := node.(*twiml.Gather); ok {
			return g, true
		}
	}
	return nil, false
}

// Redirect returns the trailing redirect of this turn, if any.
func (t *CallTurn) Redirect() (*twiml.Redirect, bool) {
	for _, node := range t.Doc.Children {
		if r, ok := node.(*twiml.Redirect); ok {
			return r, true
		}
	}
	return nil, false
}

// HungUp reports whether this turn ends the call.
func (t *CallTurn) HungUp() bool {
	for _, node := range t.Doc.Children {
		if _, ok := node.(*twiml.Hangup); ok {
			return true
		}
	}
	return false
}

// Transcript returns the spoken text of this turn in order, including
// prompts nested inside a gather.
func (t *CallTurn) Transcript() []string {
	return collectSays(t.Doc.Children)
}

func collectSays(nodes []twiml.Node) []string {
	var out []string
	for _, node := range nodes {
		switch n := node.(type) {
		case *twiml.Say:
			out = append(out, n.Text)
		case *twiml.Gather:
			out = append(out, collectSays(n.Children)...)
		case *twiml.Dial:
			out = append(out, collectSays(n.Children)...)
		}
	}
	return out
}

// Dial places the call: the fresh inbound event with no digits and no
// continuation.
func (c *Caller) Dial(ctx context.Context) (*CallTurn, error) {
	return c.post(ctx, c.endpoint, "")
}

// Press sends DTMF digits to the current turn's gather action.
func (c *Caller) Press(ctx context.Context, turn *CallTurn, digits string) (*CallTurn, error) {
	gather, ok := turn.Gather()
	if !ok {
		return nil, errors.New("current turn has no gather to press digits into")
	}
	target, err := c.resolve(turn.URL, gather.Action)
	if err != nil {
		return nil, err
	}
	return c.post(ctx, target, digits)
}

// TimeOut lets the current turn's gather expire without input: the provider
// falls through to the trailing redirect and posts back with empty digits.
func (c *Caller) TimeOut(ctx context.Context, turn *CallTurn) (*CallTurn, error) {
	redirect, ok := turn.Redirect()
	if !ok {
		return nil, errors.New("current turn has no redirect to fall through to")
	}
	target, err := c.resolve(turn.URL, redirect.URL)
	if err != nil {
		return nil, err
	}
	return c.post(ctx, target, "")
}

func (c *Caller) post(ctx context.Context, targetURL, digits string) (*CallTurn, error) {
	form := url.Values{}
	form.Set("CallSid", c.callSID)
	form.Set("From", c.from)
	form.Set("To", c.to)
	form.Set("CallStatus", "in-progress")
	if digits != "" {
		form.Set("Digits", digits)
	}

	status, body, _, err := c.client.POST(ctx, targetURL, form)
	if err != nil {
		return nil, errors.Wrapf(err, "post %s", targetURL)
	}
	if status < 200 || status >= 300 {
		return nil, errors.Errorf("endpoint %s returned status %d", targetURL, status)
	}

	doc, err := twiml.Parse(body)
	if err != nil {
		return nil, errors.Wrapf(err, "parse response from %s", targetURL)
	}

	return &CallTurn{URL: targetURL, Raw: body, Doc: doc}, nil
}

// resolve resolves an action URL relative to the URL of the document that
// carried it.
func (c *Caller) resolve(currentDocURL, actionURL string) (string, error) {
	target, err := url.Parse(actionURL)
	if err != nil {
		return "", fmt.Errorf("invalid action URL %q: %w", actionURL, err)
	}
	if target.IsAbs() {
		return target.String(), nil
	}
	base, err := url.Parse(currentDocURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", currentDocURL, err)
	}
	return base.ResolveReference(target).String(), nil
}
