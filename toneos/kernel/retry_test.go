package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillQueue(t *testing.T, ctx *Context, to Capability) {
	t.Helper()
	for i := 0; i < mailboxSlots; i++ {
		require.Equal(t, SendOK, ctx.SendToCapResult(to, 1, []byte("x"), Capability{}), "filling slot %d", i)
	}
}

func tickInBackground(k *Kernel, n uint64) {
	go func() {
		for i := uint64(1); i <= n; i++ {
			k.TickTo(i)
			time.Sleep(time.Millisecond)
		}
	}()
}

func TestMessagePayloadClampsLen(t *testing.T) {
	var msg Message
	msg.Len = MaxMessageBytes + 10
	assert.Len(t, msg.Payload(), MaxMessageBytes)
}

func TestSendToCapRetryZeroLimitDoesNotBlock(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := NewContext(k)
	to := ep.Restrict(RightSend)

	fillQueue(t, ctx, to)
	assert.Equal(t, SendErrQueueFull, ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 0))
}

func TestSendToCapRetrySucceedsAfterDrain(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := NewContext(k)
	to := ep.Restrict(RightSend)
	ch, ok := ctx.RecvChan(ep.Restrict(RightRecv))
	require.True(t, ok)

	fillQueue(t, ctx, to)

	resultCh := make(chan SendResult, 1)
	go func() {
		resultCh <- ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 5)
	}()

	<-ch
	tickInBackground(k, 50)

	select {
	case res := <-resultCh:
		assert.Equal(t, SendOK, res)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send retry")
	}
}

func TestSendToCapRetryRespectsLimit(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := NewContext(k)
	to := ep.Restrict(RightSend)

	fillQueue(t, ctx, to)

	resultCh := make(chan SendResult, 1)
	go func() {
		resultCh <- ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 1)
	}()
	tickInBackground(k, 50)

	select {
	case res := <-resultCh:
		assert.Equal(t, SendErrQueueFull, res)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send retry")
	}
}
