package shutdown

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/relay-agent/internal/liveness"
	"github.com/benmeehan/relay-agent/internal/mocks"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

func newTestCoordinator(transport *mocks.MockTransport) (*Coordinator, *Flag, *[]int) {
	flag := NewFlag()
	offline := liveness.NewProtocol("rasp/status").OfflineMessage()
	c := NewCoordinator(flag, transport, offline, time.Second, zerolog.Nop())

	codes := &[]int{}
	c.Exit = func(code int) { *codes = append(*codes, code) }
	return c, flag, codes
}

// TestCoordinator_Shutdown_OfflineBeforeDisconnect tests the interrupt scenario while idle.
func TestCoordinator_Shutdown_OfflineBeforeDisconnect(t *testing.T) {
	var order []string
	transport := new(mocks.MockTransport)
	transport.On("Publish", mock.MatchedBy(func(msg mqtt.Message) bool {
		return msg.Topic == "rasp/status" && msg.PayloadString() == "0" && msg.Retained && msg.QoS == 1
	})).Run(func(mock.Arguments) { order = append(order, "offline") }).Return(nil)
	transport.On("Disconnect", time.Second).Run(func(mock.Arguments) { order = append(order, "disconnect") }).Return(nil)

	c, flag, codes := newTestCoordinator(transport)

	c.Shutdown()

	assert.True(t, flag.IsSet())
	assert.Equal(t, []string{"offline", "disconnect"}, order)
	assert.Equal(t, []int{0}, *codes)
	transport.AssertExpectations(t)
}

// TestCoordinator_Shutdown_PublishFailureIgnored tests that a failed offline publish does not stop shutdown.
func TestCoordinator_Shutdown_PublishFailureIgnored(t *testing.T) {
	transport := new(mocks.MockTransport)
	transport.On("Publish", mock.Anything).Return(errors.New("not connected"))
	transport.On("Disconnect", time.Second).Return(nil)

	c, _, codes := newTestCoordinator(transport)

	c.Shutdown()

	assert.Equal(t, []int{0}, *codes)
	transport.AssertExpectations(t)
}

// TestCoordinator_Shutdown_DisconnectFailure tests that a hung disconnect is fatal.
func TestCoordinator_Shutdown_DisconnectFailure(t *testing.T) {
	transport := new(mocks.MockTransport)
	transport.On("Publish", mock.Anything).Return(nil)
	transport.On("Disconnect", time.Second).Return(mqtt.ErrDisconnectTimeout)

	c, _, codes := newTestCoordinator(transport)

	c.Shutdown()

	assert.Equal(t, []int{3}, *codes)
}

// TestCoordinator_Shutdown_OnlyOnce tests that repeated signals run the sequence once.
func TestCoordinator_Shutdown_OnlyOnce(t *testing.T) {
	transport := new(mocks.MockTransport)
	transport.On("Publish", mock.Anything).Return(nil)
	transport.On("Disconnect", time.Second).Return(nil)

	c, _, codes := newTestCoordinator(transport)

	c.Shutdown()
	c.Shutdown()

	assert.Equal(t, []int{0}, *codes)
	transport.AssertNumberOfCalls(t, "Publish", 1)
	transport.AssertNumberOfCalls(t, "Disconnect", 1)
}

// TestCoordinator_Watch_ReleasesWaiters tests that a signal runs shutdown and unparks Wait.
func TestCoordinator_Watch_ReleasesWaiters(t *testing.T) {
	transport := new(mocks.MockTransport)
	transport.On("Publish", mock.Anything).Return(nil)
	transport.On("Disconnect", time.Second).Return(nil)

	c, flag, _ := newTestCoordinator(transport)

	sigs := make(chan os.Signal, 1)
	go c.Watch(sigs)
	sigs <- syscall.SIGINT

	waited := make(chan struct{})
	go func() {
		c.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after shutdown")
	}
	assert.True(t, flag.IsSet())
}

// TestFlag_SetOnce tests the flag semantics.
func TestFlag_SetOnce(t *testing.T) {
	flag := NewFlag()
	assert.False(t, flag.IsSet())

	assert.True(t, flag.Set())
	assert.False(t, flag.Set())
	assert.True(t, flag.IsSet())

	select {
	case <-flag.Done():
	default:
		t.Fatal("Done should be closed once the flag is set")
	}
}
