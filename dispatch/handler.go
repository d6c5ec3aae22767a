// SPDX-License-Identifier: GPL-3.0-or-later

// Copyright (c) 2026 NumSphere

// Package dispatch terminates inbound telephony webhooks. Each request is
// one turn of a phone call: resolve the called number's active flow, run the
// interpreter, write markup. The handler's one hard guarantee is that every
// request - including internal failures - receives a single well-formed
// markup document, because an empty or malformed response leaves a live call
// in undefined provider behavior.
package dispatch

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	twilioclient "github.com/twilio/twilio-go/client"

	"github.com/numsphere/callflow/interp"
	"github.com/numsphere/callflow/model"
	"github.com/numsphere/callflow/store"
	"github.com/numsphere/callflow/twiml"
)

// Spoken terminal messages for the dispatcher's own error paths.
const (
	MsgNumberNotConfigured = "This number is not configured to receive calls. Goodbye."
	MsgNoActiveFlow        = "There is no active call flow for this number. Goodbye."
	MsgRejected            = "This call could not be verified. Goodbye."
)

const contentTypeXML = "text/xml; charset=utf-8"

// Handler serves the voice webhook endpoint.
type Handler struct {
	flows   store.FlowStore
	numbers store.NumberStore

	callbackPath string
	defaultVoice string

	// Signature validation is optional; when validator is nil every request
	// is accepted, matching the source system's behavior without a token.
	validator *twilioclient.RequestValidator
	publicURL string

	log zerolog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

// WithCallbackPath sets the path gather continuations are addressed to;
// it must match the route the handler is mounted on.
func WithCallbackPath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.callbackPath = path
		}
	}
}

// WithDefaultVoice sets the voice for flows and fallbacks with no voice of
// their own.
func WithDefaultVoice(voice string) Option {
	return func(h *Handler) {
		if voice != "" {
			h.defaultVoice = voice
		}
	}
}

// WithSignatureValidation verifies the provider's request signature against
// the account auth token. publicURL is the externally visible base URL the
// provider signed against (scheme and host; the request URI is appended).
func WithSignatureValidation(authToken, publicURL string) Option {
	return func(h *Handler) {
		if authToken == "" {
			return
		}
		v := twilioclient.NewRequestValidator(authToken)
		h.validator = &v
		h.publicURL = publicURL
	}
}

// NewHandler creates the webhook handler.
func NewHandler(flows store.FlowStore, numbers store.NumberStore, opts ...Option) *Handler {
	h := &Handler{
		flows:        flows,
		numbers:      numbers,
		callbackPath: interp.DefaultCallbackPath,
		defaultVoice: interp.FallbackVoice,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the handler on its callback path.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(h.callbackPath, h)
	return mux
}

// ServeHTTP handles one turn.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().Interface("panic", rec).Msg("recovered during turn, writing fallback")
			h.writeFallback(w, interp.MsgConfigError)
		}
	}()

	if err := r.ParseForm(); err != nil {
		h.log.Warn().Err(err).Msg("malformed webhook form")
		h.writeFallback(w, interp.MsgConfigError)
		return
	}

	if !h.verifySignature(r) {
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature rejected")
		h.writeFallback(w, MsgRejected)
		return
	}

	turn := interp.Turn{
		CallID:      r.PostFormValue("CallSid"),
		From:        r.PostFormValue("From"),
		To:          r.PostFormValue("To"),
		Digits:      r.PostFormValue("Digits"),
		ResumeBlock: model.BlockID(r.URL.Query().Get("blockId")),
		Retry:       parseRetry(r.URL.Query().Get("retry")),
	}

	log := h.log.With().
		Str("call", turn.CallID).
		Str("from", turn.From).
		Str("to", turn.To).
		Logger()

	ctx := r.Context()

	active, err := h.numbers.IsNumberActive(ctx, turn.To)
	if err != nil {
		log.Error().Err(err).Msg("number lookup failed")
		h.writeFallback(w, MsgNumberNotConfigured)
		return
	}
	if !active {
		log.Debug().Msg("number not provisioned or inactive")
		h.writeFallback(w, MsgNumberNotConfigured)
		return
	}

	flow, err := h.flows.ActiveFlowForNumber(ctx, turn.To)
	if err != nil {
		log.Debug().Err(err).Msg("no flow bound to number")
		h.writeFallback(w, MsgNoActiveFlow)
		return
	}
	if !flow.Active {
		log.Debug().Str("flow", flow.ID).Msg("bound flow is inactive")
		h.writeFallback(w, MsgNoActiveFlow)
		return
	}

	comp := interp.New(flow,
		interp.WithCallbackPath(h.callbackPath),
		interp.WithDefaultVoice(h.defaultVoice),
		interp.WithLogger(log),
	)

	var resp *twiml.Response
	if turn.ResumeBlock != "" {
		log.Debug().Str("flow", flow.ID).Str("block", turn.ResumeBlock.String()).
			Int("retry", turn.Retry).Str("digits", turn.Digits).
			Msg("resuming gather")
		resp = comp.Resume(turn)
	} else {
		log.Debug().Str("flow", flow.ID).Msg("fresh call")
		resp = comp.CompileEntry(turn)
	}

	h.write(w, resp)
}

// verifySignature checks X-Twilio-Signature when validation is configured.
func (h *Handler) verifySignature(r *http.Request) bool {
	if h.validator == nil {
		return true
	}
	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}
	signed := h.publicURL + r.URL.RequestURI()
	return h.validator.Validate(signed, params, r.Header.Get("X-Twilio-Signature"))
}

func (h *Handler) write(w http.ResponseWriter, resp *twiml.Response) {
	w.Header().Set("Content-Type", contentTypeXML)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(twiml.Render(resp))); err != nil {
		h.log.Warn().Err(err).Msg("writing response")
	}
}

// writeFallback writes a spoken terminal message. Even rejected or broken
// requests get valid markup and a 200: the provider retries non-2xx
// responses, and a retry of a misconfigured number cannot succeed.
func (h *Handler) writeFallback(w http.ResponseWriter, text string) {
	h.write(w, &twiml.Response{Children: []twiml.Node{
		&twiml.Say{Text: text, Voice: h.defaultVoice},
		&twiml.Hangup{},
	}})
}

func parseRetry(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
