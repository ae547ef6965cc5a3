// Package tone runs the tone sysex handler as a kernel service.
package tone

import (
	"fmt"
	"sync"
	"sync/atomic"

	"tonefirmata/hal"
	logclient "tonefirmata/toneos/client/logger"
	"tonefirmata/toneos/firmata"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"
)

// Stats counts processed tone commands.
type Stats struct {
	Started uint32
	Stopped uint32
	Ignored uint32
	Failed  uint32
}

func (s Stats) String() string {
	return fmt.Sprintf("tone: started=%d stopped=%d ignored=%d failed=%d", s.Started, s.Stopped, s.Ignored, s.Failed)
}

// Service applies MsgToneSysex argument vectors to a tone output.
type Service struct {
	out    hal.ToneOutput
	ep     kernel.Capability
	logCap kernel.Capability

	subscriberMu sync.Mutex
	subscriber   kernel.Capability

	started atomic.Uint32
	stopped atomic.Uint32
	ignored atomic.Uint32
	failed  atomic.Uint32
}

func New(out hal.ToneOutput, ep, logCap kernel.Capability) *Service {
	return &Service{out: out, ep: ep, logCap: logCap}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}

	for msg := range ch {
		switch proto.Kind(msg.Kind) {
		case proto.MsgToneSysex:
			s.handleSysex(ctx, msg)
		case proto.MsgToneSubscribe:
			s.handleSubscribe(msg)
		case proto.MsgToneSetVolume:
			s.handleSetVolume(ctx, msg)
		}
	}
}

// Stats returns a snapshot of the command counters.
func (s *Service) Stats() Stats {
	return Stats{
		Started: s.started.Load(),
		Stopped: s.stopped.Load(),
		Ignored: s.ignored.Load(),
		Failed:  s.failed.Load(),
	}
}

func (s *Service) handleSysex(ctx *kernel.Context, msg kernel.Message) {
	req, ok := firmata.DecodeTone(msg.Payload())
	if !ok {
		// Truncated commands are dropped without a reply.
		s.ignored.Add(1)
		return
	}

	var drv firmata.ToneDriver
	if s.out != nil {
		drv = s.out
	}
	if err := firmata.Apply(drv, req); err != nil {
		s.failed.Add(1)
		logclient.Logf(ctx, s.logCap, "tone: %s: %v", req, err)
		s.publish(ctx, proto.ToneFailed, req)
		if msg.Cap.Valid() {
			payload := proto.ErrorPayload(proto.ErrInternal, proto.MsgToneSysex, []byte(err.Error()), kernel.MaxMessageBytes)
			_ = ctx.SendToCapRetry(msg.Cap, uint16(proto.MsgError), payload, kernel.Capability{}, 10)
		}
		return
	}

	action := proto.ToneStarted
	if req.Silent() {
		action = proto.ToneStopped
		s.stopped.Add(1)
	} else {
		s.started.Add(1)
	}
	logclient.Log(ctx, s.logCap, req.String())
	s.publish(ctx, action, req)
}

func (s *Service) handleSubscribe(msg kernel.Message) {
	if !msg.Cap.Valid() {
		return
	}
	s.subscriberMu.Lock()
	s.subscriber = msg.Cap
	s.subscriberMu.Unlock()
}

func (s *Service) handleSetVolume(ctx *kernel.Context, msg kernel.Message) {
	vol, ok := proto.DecodeToneSetVolumePayload(msg.Payload())
	if !ok || s.out == nil {
		return
	}
	s.out.SetVolume(vol)
	logclient.Log(ctx, s.logCap, fmt.Sprintf("tone: volume=%d", vol))
}

func (s *Service) publish(ctx *kernel.Context, action proto.ToneAction, req firmata.ToneRequest) {
	s.subscriberMu.Lock()
	sub := s.subscriber
	s.subscriberMu.Unlock()
	if !sub.Valid() {
		return
	}

	payload := proto.ToneEventPayload(action, req.Pin, req.Frequency, req.Duration)
	switch ctx.SendToCapResult(sub, uint16(proto.MsgToneEvent), payload, kernel.Capability{}) {
	case kernel.SendOK, kernel.SendErrQueueFull:
	default:
		s.subscriberMu.Lock()
		if s.subscriber == sub {
			s.subscriber = kernel.Capability{}
		}
		s.subscriberMu.Unlock()
	}
}
