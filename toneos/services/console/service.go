// Package console renders a text log of tone activity on the framebuffer.
package console

import (
	"fmt"

	"tonefirmata/hal"
	"tonefirmata/internal/buildinfo"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	fontHeight = 10
	fontOffset = 7
)

// Service owns the terminal. It accepts MsgConsoleWrite, MsgConsoleClear and
// MsgToneEvent; the screen is presented on the next tick after a change.
type Service struct {
	disp hal.Display
	ep   kernel.Capability

	fb hal.Framebuffer
	d  *fbDisplay
	t  *tinyterm.Terminal
}

func New(disp hal.Display, ep kernel.Capability) *Service {
	return &Service{disp: disp, ep: ep}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}
	if s.disp == nil {
		return
	}
	s.fb = s.disp.Framebuffer()
	if s.fb == nil {
		return
	}

	s.d = newFBDisplay(s.fb)
	s.reset()
	s.banner()
	dirty := true

	tickCh := make(chan uint64, 1)
	go func() {
		last := ctx.NowTick()
		for {
			last = ctx.WaitTick(last)
			select {
			case <-ctx.Done():
				return
			case tickCh <- last:
			default:
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-tickCh:
			if dirty {
				s.t.Display()
				dirty = false
			}

		case msg, ok := <-ch:
			if !ok {
				return
			}
			switch proto.Kind(msg.Kind) {
			case proto.MsgConsoleWrite:
				_, _ = s.t.Write(msg.Payload())
				dirty = true
			case proto.MsgConsoleClear:
				s.reset()
				dirty = true
			case proto.MsgToneEvent:
				if line, ok := EventLine(msg.Payload()); ok {
					_, _ = s.t.Write([]byte(line + "\r\n"))
					dirty = true
				}
			}
		}
	}
}

// EventLine formats a MsgToneEvent payload for display.
func EventLine(payload []byte) (string, bool) {
	action, pin, freq, dur, ok := proto.DecodeToneEventPayload(payload)
	if !ok {
		return "", false
	}
	switch action {
	case proto.ToneStarted:
		if dur == 0 {
			return fmt.Sprintf("pin %2d  %5d Hz  hold", pin, freq), true
		}
		return fmt.Sprintf("pin %2d  %5d Hz  %d ms", pin, freq, dur), true
	case proto.ToneStopped:
		return fmt.Sprintf("pin %2d  off", pin), true
	default:
		return fmt.Sprintf("pin %2d  %s", pin, action), true
	}
}

func (s *Service) banner() {
	_, _ = s.t.Printf("tonefirmata %s\r\n", buildinfo.Short())
	_, _ = s.t.Printf("sysex 0x7E: pin freq14 dur14\r\n\r\n")
}

func (s *Service) reset() {
	s.t = tinyterm.NewTerminal(s.d)
	s.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        fontHeight,
		FontOffset:        fontOffset,
		UseSoftwareScroll: true,
	})
	s.fb.ClearRGB(0, 0, 0)
}
