package melody

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	toneclient "tonefirmata/toneos/client/tone"
	"tonefirmata/toneos/firmata"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"
)

type countingLED struct {
	mu        sync.Mutex
	on        bool
	highs     int
}

func (l *countingLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.highs++
}

func (l *countingLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
}

type sysexRecorder struct {
	cap kernel.Capability

	mu   sync.Mutex
	reqs []firmata.ToneRequest
}

func (r *sysexRecorder) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(r.cap)
	if !ok {
		return
	}
	for msg := range ch {
		if proto.Kind(msg.Kind) != proto.MsgToneSysex {
			continue
		}
		req, ok := firmata.DecodeTone(msg.Payload())
		if !ok {
			continue
		}
		r.mu.Lock()
		r.reqs = append(r.reqs, req)
		r.mu.Unlock()
	}
}

func (r *sysexRecorder) snapshot() []firmata.ToneRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]firmata.ToneRequest(nil), r.reqs...)
}

func runPlayer(t *testing.T, song Song) ([]firmata.ToneRequest, *countingLED) {
	t.Helper()

	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	rec := &sysexRecorder{cap: ep.Restrict(kernel.RightRecv)}
	led := &countingLED{}
	p := NewPlayer(song, 10, toneclient.New(ep.Restrict(kernel.RightSend)), led, kernel.Capability{})

	k.AddTask(rec)
	k.AddTask(p)

	deadline := time.After(2 * time.Second)
	for seq := uint64(10); ; seq += 10 {
		k.TickTo(seq)
		select {
		case <-p.Done():
			// Let the recorder drain the mailbox before tearing down.
			time.Sleep(20 * time.Millisecond)
			reqs := rec.snapshot()
			k.Close()
			return reqs, led
		case <-deadline:
			k.Close()
			t.Fatal("player did not finish")
			return nil, nil
		case <-time.After(time.Millisecond):
		}
	}
}

func TestPlayerIntro(t *testing.T) {
	defer goleak.VerifyNone(t)

	intro, _ := Builtin("intro")
	reqs, led := runPlayer(t, intro)

	require.Equal(t, []firmata.ToneRequest{
		{Pin: 10, Frequency: 261, Duration: 250},
		{Pin: 10, Frequency: 330, Duration: 250},
		{Pin: 10, Frequency: 392, Duration: 250},
		{Pin: 10, Frequency: 494, Duration: 250},
	}, reqs)

	led.mu.Lock()
	defer led.mu.Unlock()
	assert.Equal(t, 4, led.highs)
	assert.False(t, led.on)
}

func TestPlayerRestSendsStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	song := Song{Name: "r", BPM: 600, Notes: []Step{{"A4", 1}, {"REST", 1}, {"A5", 1}}}
	reqs, led := runPlayer(t, song)

	require.Equal(t, []firmata.ToneRequest{
		{Pin: 10, Frequency: 440, Duration: 100},
		{Pin: 10},
		{Pin: 10, Frequency: 880, Duration: 100},
	}, reqs)
	led.mu.Lock()
	defer led.mu.Unlock()
	assert.Equal(t, 2, led.highs)
}

func TestPlayerRejectsInvalidSong(t *testing.T) {
	defer goleak.VerifyNone(t)

	reqs, _ := runPlayer(t, Song{Name: "empty", BPM: 120})
	assert.Empty(t, reqs)
}
