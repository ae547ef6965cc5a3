package console

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tonefirmata/hal"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"
)

type testFB struct {
	w, h     int
	buf      []byte
	presents chan struct{}
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, buf: make([]byte, w*h*2), presents: make(chan struct{}, 16)}
}

func (f *testFB) Width() int                  { return f.w }
func (f *testFB) Height() int                 { return f.h }
func (f *testFB) Format() hal.PixelFormat     { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int            { return f.w * 2 }
func (f *testFB) Buffer() []byte              { return f.buf }
func (f *testFB) Framebuffer() hal.Framebuffer { return f }

func (f *testFB) ClearRGB(r, g, b uint8) {
	for i := 0; i+1 < len(f.buf); i += 2 {
		putRGB565(f.buf[i:], color.RGBA{R: r, G: g, B: b})
	}
}

func (f *testFB) Present() error {
	select {
	case f.presents <- struct{}{}:
	default:
	}
	return nil
}

func (f *testFB) lit() bool {
	for _, b := range f.buf {
		if b != 0 {
			return true
		}
	}
	return false
}

func TestEventLine(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    string
	}{
		{"start", proto.ToneEventPayload(proto.ToneStarted, 10, 440, 500), "pin 10    440 Hz  500 ms"},
		{"hold", proto.ToneEventPayload(proto.ToneStarted, 3, 262, 0), "pin  3    262 Hz  hold"},
		{"stop", proto.ToneEventPayload(proto.ToneStopped, 10, 0, 0), "pin 10  off"},
		{"fail", proto.ToneEventPayload(proto.ToneFailed, 7, 440, 0), "pin  7  fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EventLine(tt.payload)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := EventLine([]byte{1, 2})
	assert.False(t, ok)
}

func TestFBDisplayFillAndScroll(t *testing.T) {
	fb := newTestFB(4, 4)
	d := newFBDisplay(fb)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	require.NoError(t, d.FillRectangle(0, 3, 4, 1, white))
	assert.Equal(t, []byte{0xFF, 0xFF}, fb.buf[3*8:3*8+2])

	require.NoError(t, d.ScrollUp(1, color.RGBA{}))
	assert.Equal(t, []byte{0xFF, 0xFF}, fb.buf[2*8:2*8+2])
	assert.Equal(t, []byte{0, 0}, fb.buf[3*8:3*8+2])

	// Out of range writes are clipped.
	d.SetPixel(-1, 0, white)
	d.SetPixel(4, 4, white)
	require.NoError(t, d.FillRectangle(-10, -10, 2, 2, white))
	assert.Equal(t, []byte{0, 0}, fb.buf[0:2])
}

func TestServiceRendersOnTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	fb := newTestFB(160, 80)
	k.AddTask(New(fb, ep.Restrict(kernel.RightRecv)))

	ctx := kernel.NewContext(k)
	sendCap := ep.Restrict(kernel.RightSend)
	require.Equal(t, kernel.SendOK, ctx.SendToCapResult(sendCap, uint16(proto.MsgToneEvent), proto.ToneEventPayload(proto.ToneStarted, 10, 440, 500), kernel.Capability{}))
	require.Equal(t, kernel.SendOK, ctx.SendToCapResult(sendCap, uint16(proto.MsgConsoleWrite), []byte("hello\r\n"), kernel.Capability{}))

	deadline := time.After(time.Second)
	for seq := uint64(1); ; seq++ {
		k.TickTo(seq)
		select {
		case <-fb.presents:
			k.Close()
			return
		case <-deadline:
			k.Close()
			t.Fatal("console never presented")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestBannerDrawsText(t *testing.T) {
	fb := newTestFB(160, 80)
	s := New(fb, kernel.Capability{})
	s.fb = fb
	s.d = newFBDisplay(fb)
	s.reset()
	assert.False(t, fb.lit())

	s.banner()
	assert.True(t, fb.lit())
}
