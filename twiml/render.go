package twiml

import (
	"fmt"
	"strconv"
	"strings"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>`

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML metacharacters with their named entities.
// The named forms (not numeric character references) are part of the dialect:
// downstream tooling matches on &quot; and &apos;.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Render serializes a Response to a markup document with an XML declaration
// and a single <Response> root.
func Render(resp *Response) string {
	var b strings.Builder
	b.WriteString(header)
	if len(resp.Children) == 0 {
		b.WriteString("<Response/>")
		return b.String()
	}
	b.WriteString("<Response>")
	for _, child := range resp.Children {
		renderNode(&b, child)
	}
	b.WriteString("</Response>")
	return b.String()
}

func renderNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Say:
		openTag(b, "Say", attr("voice", n.Voice), attrFloat("rate", n.Rate))
		b.WriteString(Escape(n.Text))
		closeTag(b, "Say")
	case *Play:
		openTag(b, "Play", attrInt("loop", n.Loop))
		b.WriteString(Escape(n.URL))
		closeTag(b, "Play")
	case *Pause:
		selfClose(b, "Pause", attrInt("length", n.Length))
	case *Gather:
		openTag(b, "Gather",
			attr("input", n.Input),
			attrInt("numDigits", n.NumDigits),
			attrInt("timeout", n.Timeout),
			attr("action", n.Action),
			attr("method", n.Method),
		)
		for _, child := range n.Children {
			renderNode(b, child)
		}
		closeTag(b, "Gather")
	case *Dial:
		attrs := []string{
			attrInt("timeout", n.Timeout),
			attr("action", n.Action),
			attr("method", n.Method),
		}
		if len(n.Children) == 0 {
			openTag(b, "Dial", attrs...)
			b.WriteString(Escape(n.Number))
			closeTag(b, "Dial")
			return
		}
		openTag(b, "Dial", attrs...)
		for _, child := range n.Children {
			renderNode(b, child)
		}
		closeTag(b, "Dial")
	case *Number:
		openTag(b, "Number")
		b.WriteString(Escape(n.Number))
		closeTag(b, "Number")
	case *Record:
		selfClose(b, "Record",
			attrInt("maxLength", n.MaxLength),
			attr("finishOnKey", n.FinishOnKey),
			attrBool("playBeep", n.PlayBeep),
			attrBool("transcribe", n.Transcribe),
			attr("action", n.Action),
			attr("method", n.Method),
		)
	case *Sms:
		openTag(b, "Sms", attr("to", n.To))
		b.WriteString(Escape(n.Body))
		closeTag(b, "Sms")
	case *Redirect:
		openTag(b, "Redirect", attr("method", n.Method))
		b.WriteString(Escape(n.URL))
		closeTag(b, "Redirect")
	case *Hangup:
		selfClose(b, "Hangup")
	default:
		// A node the renderer does not know cannot reach the wire; the AST
		// is closed and the compiler only builds the types above.
		panic(fmt.Sprintf("twiml: unrenderable node %T", node))
	}
}

func openTag(b *strings.Builder, name string, attrs ...string) {
	b.WriteByte('<')
	b.WriteString(name)
	writeAttrs(b, attrs)
	b.WriteByte('>')
}

func closeTag(b *strings.Builder, name string) {
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func selfClose(b *strings.Builder, name string, attrs ...string) {
	b.WriteByte('<')
	b.WriteString(name)
	writeAttrs(b, attrs)
	b.WriteString("/>")
}

func writeAttrs(b *strings.Builder, attrs []string) {
	for _, a := range attrs {
		if a == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(a)
	}
}

// attr formats one attribute, or returns "" when the value is empty so the
// attribute is omitted entirely.
func attr(name, value string) string {
	if value == "" {
		return ""
	}
	return name + `="` + Escape(value) + `"`
}

func attrInt(name string, value int) string {
	if value == 0 {
		return ""
	}
	return name + `="` + strconv.Itoa(value) + `"`
}

func attrFloat(name string, value float64) string {
	if value == 0 {
		return ""
	}
	return name + `="` + strconv.FormatFloat(value, 'f', -1, 64) + `"`
}

func attrBool(name string, value bool) string {
	if !value {
		return ""
	}
	return name + `="true"`
}
