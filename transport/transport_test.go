package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockReceiveHonoursDeadline(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.SetReadDeadline(time.Now().Add(50*time.Millisecond)))

	buf := make([]byte, 16)
	start := time.Now()
	_, _, err := m.Receive(buf)

	require.Error(t, err)
	var nerr net.Error
	require.ErrorAs(t, err, &nerr)
	assert.True(t, nerr.Timeout())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestMockRecordsSends(t *testing.T) {
	m := NewMock()

	n, err := m.Send([]byte{1, 2, 3}, "10.0.0.1", 6454)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte{1, 2, 3}, sent[0].Payload)
	assert.Equal(t, "10.0.0.1", sent[0].Host)
	assert.Equal(t, 6454, sent[0].Port)
}

func TestUDPLoopback(t *testing.T) {
	listener, err := OpenPort("", 0)
	require.NoError(t, err)
	defer listener.Close()

	sender, err := Open("")
	require.NoError(t, err)
	defer sender.Close()

	port := listener.LocalAddr().(*net.UDPAddr).Port
	n, err := sender.Send([]byte("hello"), "127.0.0.1", port)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, 64)
	n, from, err := listener.Receive(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
	assert.NotNil(t, from)
}

func TestInterfaceIPUnknownInterface(t *testing.T) {
	_, err := InterfaceIP("definitely-missing0")
	require.Error(t, err)
}
