package claims

import (
	"strconv"
	"strings"
)

const (
	AddressPrefix  = "addr:"
	IdentityPrefix = "tg:"
)

// Key identifies one claim record. Address and chat identity keys live in
// separate key spaces and never collide.
type Key string

// AddressKey returns the claim key of a destination address.
// Addresses compare case-insensitively.
func AddressKey(addr string) Key {
	return Key(AddressPrefix + strings.ToLower(strings.TrimSpace(addr)))
}

// IdentityKey returns the claim key of a chat-bot user.
func IdentityKey(id int64) Key {
	return Key(IdentityPrefix + strconv.FormatInt(id, 10))
}

func (k Key) String() string {
	return string(k)
}

// IsAddress reports whether the key is in the address key space.
func (k Key) IsAddress() bool {
	return strings.HasPrefix(string(k), AddressPrefix)
}

// IsIdentity reports whether the key is in the chat identity key space.
func (k Key) IsIdentity() bool {
	return strings.HasPrefix(string(k), IdentityPrefix)
}
