package twiml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"a & b", "a &amp; b"},
		{"<Say>", "&lt;Say&gt;"},
		{`she said "hi"`, "she said &quot;hi&quot;"},
		{"it's", "it&apos;s"},
		{`&<>"'`, "&amp;&lt;&gt;&quot;&apos;"},
		{`Hello & "friend" <you>`, "Hello &amp; &quot;friend&quot; &lt;you&gt;"},
		{"&amp;", "&amp;amp;"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in), "escape %q", tt.in)
	}
}

func TestRenderEmptyResponse(t *testing.T) {
	got := Render(&Response{})
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><Response/>`, got)
}

func TestRenderSay(t *testing.T) {
	got := Render(&Response{Children: []Node{
		&Say{Text: "Hello & welcome", Voice: "alice", Rate: 1.5},
	}})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response><Say voice="alice" rate="1.5">Hello &amp; welcome</Say></Response>`,
		got)
}

func TestRenderOmitsEmptyAttributes(t *testing.T) {
	got := Render(&Response{Children: []Node{
		&Say{Text: "hi"},
		&Pause{},
	}})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response><Say>hi</Say><Pause/></Response>`,
		got)
}

func TestRenderGatherWithRedirect(t *testing.T) {
	action := "/voice?blockId=menu&retry=1"
	got := Render(&Response{Children: []Node{
		&Gather{
			Input:     "dtmf",
			NumDigits: 1,
			Timeout:   5,
			Action:    action,
			Method:    "POST",
			Children:  []Node{&Say{Text: "Press 1", Voice: "alice"}},
		},
		&Redirect{URL: action, Method: "POST"},
	}})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response>`+
			`<Gather input="dtmf" numDigits="1" timeout="5" action="/voice?blockId=menu&amp;retry=1" method="POST">`+
			`<Say voice="alice">Press 1</Say></Gather>`+
			`<Redirect method="POST">/voice?blockId=menu&amp;retry=1</Redirect></Response>`,
		got)
}

func TestRenderDial(t *testing.T) {
	single := Render(&Response{Children: []Node{
		&Dial{Number: "+15551234567", Timeout: 30},
	}})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response><Dial timeout="30">+15551234567</Dial></Response>`,
		single)

	group := Render(&Response{Children: []Node{
		&Dial{Timeout: 20, Children: []Node{
			&Number{Number: "+15550000001"},
			&Number{Number: "+15550000002"},
		}},
	}})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response><Dial timeout="20">`+
			`<Number>+15550000001</Number><Number>+15550000002</Number></Dial></Response>`,
		group)
}

func TestRenderRecord(t *testing.T) {
	got := Render(&Response{Children: []Node{
		&Record{MaxLength: 120, FinishOnKey: "#", PlayBeep: true, Transcribe: true},
	}})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response>`+
			`<Record maxLength="120" finishOnKey="#" playBeep="true" transcribe="true"/></Response>`,
		got)
}

func TestRenderSmsPlayHangup(t *testing.T) {
	got := Render(&Response{Children: []Node{
		&Sms{To: "+15550001111", Body: "Thanks for calling"},
		&Play{URL: "https://media.numsphere.io/hold/jazz.mp3", Loop: 10},
		&Hangup{},
	}})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response>`+
			`<Sms to="+15550001111">Thanks for calling</Sms>`+
			`<Play loop="10">https://media.numsphere.io/hold/jazz.mp3</Play>`+
			`<Hangup/></Response>`,
		got)
}
