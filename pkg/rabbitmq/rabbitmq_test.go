package rabbitmq

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseWithoutConnection(t *testing.T) {
	c := &Client{}
	assert.NoError(t, c.Close())
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{exchange: DefaultExchange}
	err := c.Publish("product.created", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel is not available")
}

func TestNewClientUnreachableBroker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client, err := NewClient(Config{URL: "amqp://guest:guest@" + addr + "/"})
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to RabbitMQ")
}
