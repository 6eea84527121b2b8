package events

import (
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestLedgerChannelUsesPrefix(t *testing.T) {
	bus := NewRedisBusWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "desk")
	defer bus.Close()

	assert.Equal(t, "desk:ledger:events:42", bus.LedgerChannel(42))
	assert.Equal(t, "desk", bus.Prefix())
}

func TestDefaultPrefix(t *testing.T) {
	bus := NewRedisBus(&Config{Host: "127.0.0.1", Port: 0})
	defer bus.Close()

	assert.Equal(t, "agencydesk", bus.Prefix())
}
