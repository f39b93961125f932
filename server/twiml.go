package server

import (
	"encoding/xml"
	"fmt"

	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

// TwiML document structure, limited to the verbs the call flow uses.
type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Say     []twimlSay   `xml:"Say,omitempty"`
	Play    []string     `xml:"Play,omitempty"`
	Gather  *twimlGather `xml:"Gather,omitempty"`
	Hangup  *struct{}    `xml:"Hangup,omitempty"`
}

type twimlSay struct {
	Voice string `xml:"voice,attr,omitempty"`
	Text  string `xml:",chardata"`
}

type twimlGather struct {
	Input         string     `xml:"input,attr"`
	Action        string     `xml:"action,attr"`
	Method        string     `xml:"method,attr"`
	SpeechTimeout string     `xml:"speechTimeout,attr"`
	Timeout       int        `xml:"timeout,attr"`
	Say           []twimlSay `xml:"Say,omitempty"`
	Play          []string   `xml:"Play,omitempty"`
}

const (
	sayVoice             = "Polly.Aditi"
	gatherTimeoutSeconds = 5
)

// renderVoice turns a voice action into a TwiML document. When audioURL is
// non-empty the utterance is played from our audio endpoint, otherwise
// Twilio's built-in voice speaks it. Unless the call is ending, the utterance
// is nested inside a speech gather so the caller's reply comes back to
// continueAction.
func renderVoice(action contractx.VoiceAction, audioURL, continueAction string) ([]byte, error) {
	resp := twimlResponse{}

	if action.EndCall {
		if audioURL != "" {
			resp.Play = []string{audioURL}
		} else {
			resp.Say = []twimlSay{{Voice: sayVoice, Text: action.Text}}
		}
		resp.Hangup = &struct{}{}
	} else {
		gather := &twimlGather{
			Input:         "speech",
			Action:        continueAction,
			Method:        "POST",
			SpeechTimeout: "auto",
			Timeout:       gatherTimeoutSeconds,
		}
		if audioURL != "" {
			gather.Play = []string{audioURL}
		} else {
			gather.Say = []twimlSay{{Voice: sayVoice, Text: action.Text}}
		}
		resp.Gather = gather
	}

	body, err := xml.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
