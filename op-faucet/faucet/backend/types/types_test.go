package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	var c Channel
	require.NoError(t, c.UnmarshalText([]byte("telegram")))
	require.Equal(t, ChannelTelegram, c)
	require.Equal(t, "telegram", c.String())
	data, err := ChannelHTTP.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "http", string(data))

	require.ErrorIs(t, c.UnmarshalText([]byte("carrier-pigeon")), ErrUnknownChannel)
	require.Equal(t, ChannelTelegram, c, "unchanged on error")
	_, err = Channel("").MarshalText()
	require.ErrorIs(t, err, ErrUnknownChannel)
}
