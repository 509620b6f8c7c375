package types

import (
	"errors"
	"fmt"
)

var ErrUnknownChannel = errors.New("unknown channel")

// Channel is the ingress a funding request arrived through.
type Channel string

const (
	ChannelHTTP     Channel = "http"
	ChannelTelegram Channel = "telegram"
)

func (c Channel) String() string {
	return string(c)
}

func (c Channel) MarshalText() ([]byte, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	return []byte(c), nil
}

func (c *Channel) UnmarshalText(data []byte) error {
	v := Channel(data)
	if err := v.Check(); err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Channel) Check() error {
	switch c {
	case ChannelHTTP, ChannelTelegram:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, string(c))
	}
}

// FaucetRequest is one request for the fixed faucet amount.
type FaucetRequest struct {
	Channel Channel
	// Address is the destination as submitted, before validation.
	Address string
	// Origin identifies the requester for logs: a remote IP or a chat user id.
	Origin string
}
