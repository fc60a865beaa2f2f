// Package alexa holds the subset of the Alexa skill request and response
// envelopes the webhook understands.
package alexa

import "strings"

// AccountSlot is the intent slot that carries the spoken account name
const AccountSlot = "Account"

// Request is an incoming skill request
type Request struct {
	Version string      `json:"version,omitempty"`
	Request RequestBody `json:"request"`
}

type RequestBody struct {
	Type      string  `json:"type"`
	RequestID string  `json:"requestId,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Keyword returns the spoken account name, or "" when the request has none
func (r *Request) Keyword() string {
	if r.Request.Intent == nil {
		return ""
	}
	return strings.TrimSpace(r.Request.Intent.Slots[AccountSlot].Value)
}

// Response is the skill reply
type Response struct {
	Version  string       `json:"version,omitempty"`
	Response ResponseBody `json:"response"`
}

type ResponseBody struct {
	OutputSpeech     OutputSpeech `json:"outputSpeech"`
	ShouldEndSession bool         `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewSpeech builds a plain-text reply that ends the session
func NewSpeech(text string) Response {
	return Response{
		Response: ResponseBody{
			OutputSpeech: OutputSpeech{
				Type: "PlainText",
				Text: text,
			},
			ShouldEndSession: true,
		},
	}
}
