// Package tone is the client side of the tone service.
package tone

import (
	"fmt"

	"tonefirmata/toneos/firmata"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"
)

const retryLimit = 500

type Client struct {
	toneCap kernel.Capability
}

func New(toneCap kernel.Capability) *Client {
	return &Client{toneCap: toneCap}
}

// Play starts a tone on pin. A zero duration plays until Stop.
func (c *Client) Play(ctx *kernel.Context, pin uint8, freqHz, durationMs uint16) error {
	return c.Sysex(ctx, firmata.EncodeTone(firmata.ToneRequest{Pin: pin, Frequency: freqHz, Duration: durationMs}), kernel.Capability{})
}

// Stop silences pin.
func (c *Client) Stop(ctx *kernel.Context, pin uint8) error {
	return c.Sysex(ctx, firmata.EncodeTone(firmata.ToneRequest{Pin: pin}), kernel.Capability{})
}

// Sysex forwards a raw tone argument vector. When replyCap is valid the service
// reports driver failures to it as MsgError.
func (c *Client) Sysex(ctx *kernel.Context, argv []byte, replyCap kernel.Capability) error {
	return c.send(ctx, proto.MsgToneSysex, proto.ToneSysexPayload(argv), replyCap)
}

func (c *Client) Subscribe(ctx *kernel.Context, eventCap kernel.Capability) error {
	return c.send(ctx, proto.MsgToneSubscribe, proto.ToneSubscribePayload(), eventCap)
}

func (c *Client) SetVolume(ctx *kernel.Context, vol uint8) error {
	return c.send(ctx, proto.MsgToneSetVolume, proto.ToneSetVolumePayload(vol), kernel.Capability{})
}

func (c *Client) send(ctx *kernel.Context, kind proto.Kind, payload []byte, xfer kernel.Capability) error {
	if ctx == nil {
		return fmt.Errorf("tone client: nil context for %s", kind)
	}
	if !c.toneCap.Valid() {
		return fmt.Errorf("tone client: missing capability for %s", kind)
	}
	res := ctx.SendToCapRetry(c.toneCap, uint16(kind), payload, xfer, retryLimit)
	if res != kernel.SendOK {
		return fmt.Errorf("tone client send %s: %s", kind, res)
	}
	return nil
}
