package server

import (
	"strings"
	"testing"

	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

func TestRenderVoiceGatherSay(t *testing.T) {
	t.Parallel()

	body, err := renderVoice(contractx.VoiceAction{Text: "What would you like to buy?"}, "", "https://example.com/calls/continue")
	if err != nil {
		t.Fatal(err)
	}
	xml := string(body)

	for _, want := range []string{
		"<Gather",
		`input="speech"`,
		`action="https://example.com/calls/continue"`,
		"<Say", "What would you like to buy?",
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("missing %q in %s", want, xml)
		}
	}
	if strings.Contains(xml, "<Hangup") {
		t.Fatalf("open call must not hang up: %s", xml)
	}
}

func TestRenderVoicePlayInsideGather(t *testing.T) {
	t.Parallel()

	body, err := renderVoice(contractx.VoiceAction{Text: "hi"}, "https://example.com/audio/tok", "https://example.com/calls/continue")
	if err != nil {
		t.Fatal(err)
	}
	xml := string(body)

	if !strings.Contains(xml, "<Play>https://example.com/audio/tok</Play>") {
		t.Fatalf("missing play: %s", xml)
	}
	if strings.Contains(xml, "<Say") {
		t.Fatalf("audio url must replace say: %s", xml)
	}
}

func TestRenderVoiceEndCallHangsUp(t *testing.T) {
	t.Parallel()

	body, err := renderVoice(contractx.VoiceAction{Text: "Goodbye!", EndCall: true}, "", "https://example.com/calls/continue")
	if err != nil {
		t.Fatal(err)
	}
	xml := string(body)

	if !strings.Contains(xml, "<Hangup") {
		t.Fatalf("missing hangup: %s", xml)
	}
	if strings.Contains(xml, "<Gather") {
		t.Fatalf("ending call must not gather: %s", xml)
	}
}

func TestRenderVoiceEscapesText(t *testing.T) {
	t.Parallel()

	body, err := renderVoice(contractx.VoiceAction{Text: `price < 300 & "cheap"`}, "", "/continue")
	if err != nil {
		t.Fatal(err)
	}
	xml := string(body)

	if strings.Contains(xml, `price < 300 & "cheap"`) {
		t.Fatalf("text must be XML-escaped: %s", xml)
	}
	if !strings.Contains(xml, "price &lt; 300 &amp;") {
		t.Fatalf("expected escaped text: %s", xml)
	}
}
