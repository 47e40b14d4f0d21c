// Package telephony bridges Twilio voice calls to the assistant backend. It
// renders TwiML menus, forwards caller speech to the HTTP API, and speaks the
// reply back.
package telephony

import (
	"encoding/xml"
	"fmt"
)

// Response is a TwiML document. Verbs render in insertion order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// Say speaks text to the caller.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Gather collects DTMF digits and/or speech.
type Gather struct {
	XMLName               xml.Name `xml:"Gather"`
	Input                 string   `xml:"input,attr,omitempty"`
	Action                string   `xml:"action,attr,omitempty"`
	Timeout               string   `xml:"timeout,attr,omitempty"`
	NumDigits             string   `xml:"numDigits,attr,omitempty"`
	SpeechTimeout         string   `xml:"speechTimeout,attr,omitempty"`
	PartialResultCallback string   `xml:"partialResultCallback,attr,omitempty"`
	Verbs                 []any
}

// Redirect transfers control to another webhook.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Play streams an audio URL, repeating loop times.
type Play struct {
	XMLName xml.Name `xml:"Play"`
	Loop    int      `xml:"loop,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Pause waits for length seconds.
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Append adds a verb to the response and returns it for chaining.
func (r *Response) Append(verb any) *Response {
	r.Verbs = append(r.Verbs, verb)
	return r
}

// Render serializes the document with the XML declaration Twilio expects.
func (r *Response) Render() (string, error) {
	data, err := xml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("telephony: render twiml: %w", err)
	}
	return xml.Header + string(data), nil
}
