package logger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	logclient "tonefirmata/toneos/client/logger"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"
)

type lineLog struct {
	mu    sync.Mutex
	lines []string
	seen  chan struct{}
}

func (l *lineLog) WriteLineString(s string) { l.add(s) }

func (l *lineLog) WriteLineBytes(b []byte) { l.add(string(b)) }

func (l *lineLog) add(s string) {
	l.mu.Lock()
	l.lines = append(l.lines, s)
	l.mu.Unlock()
	l.seen <- struct{}{}
}

func TestServiceWritesLogLines(t *testing.T) {
	defer goleak.VerifyNone(t)

	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := &lineLog{seen: make(chan struct{}, 8)}
	k.AddTask(New(out, ep.Restrict(kernel.RightRecv)))

	ctx := kernel.NewContext(k)
	sendCap := ep.Restrict(kernel.RightSend)
	require.Equal(t, kernel.SendOK, logclient.Log(ctx, sendCap, "boot"))
	require.Equal(t, kernel.SendOK, ctx.SendToCapResult(sendCap, uint16(proto.MsgToneEvent), []byte{1}, kernel.Capability{}))
	require.Equal(t, kernel.SendOK, logclient.Logf(ctx, sendCap, "pin=%d", 10))

	for i := 0; i < 2; i++ {
		select {
		case <-out.seen:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for log line")
		}
	}
	k.Close()

	out.mu.Lock()
	defer out.mu.Unlock()
	assert.Equal(t, []string{"boot", "pin=10"}, out.lines)
}

func TestLogTruncatesLongLines(t *testing.T) {
	k := kernel.New()
	defer k.Close()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	ctx := kernel.NewContext(k)

	long := make([]byte, kernel.MaxMessageBytes+20)
	for i := range long {
		long[i] = 'x'
	}
	require.Equal(t, kernel.SendOK, logclient.Log(ctx, ep, string(long)))

	msg, ok := ctx.TryRecv(ep)
	require.True(t, ok)
	assert.Len(t, msg.Payload(), kernel.MaxMessageBytes)
}

func TestLogWithoutContext(t *testing.T) {
	assert.Equal(t, kernel.SendErrInvalidFromCap, logclient.Log(nil, kernel.Capability{}, "x"))
}
