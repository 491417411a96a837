package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// CallTitle is the notification title shown for an incoming call.
	CallTitle = "Incoming Video Call"
	// ChannelNameKey is the data key carrying the call channel.
	ChannelNameKey = "channelName"
)

// Invitation asks one recipient device to join a call channel.
type Invitation struct {
	RecipientToken string
	ChannelName    string
	CallerName     string
}

// Payload is the push gateway request body.
type Payload struct {
	To           string       `json:"to"`
	Notification Notification `json:"notification"`
	Data         Data         `json:"data"`
}

// Notification is the user-visible part of a push.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Data is the silent part of a push, read by the receiver.
type Data struct {
	ChannelName string `json:"channelName"`
}

// BuildPayload assembles the gateway body for inv.
func BuildPayload(inv Invitation) Payload {
	return Payload{
		To: inv.RecipientToken,
		Notification: Notification{
			Title: CallTitle,
			Body:  fmt.Sprintf("%s is calling you!", inv.CallerName),
		},
		Data: Data{ChannelName: inv.ChannelName},
	}
}

// Encode renders p without HTML escaping and without a trailing newline.
func Encode(p Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode push payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
