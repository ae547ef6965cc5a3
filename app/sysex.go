package app

import (
	logclient "tonefirmata/toneos/client/logger"
	toneclient "tonefirmata/toneos/client/tone"
	"tonefirmata/toneos/firmata"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"
)

// sysexTask sends a fixed list of tone argument vectors, waiting out each
// sounding tone before the next one.
type sysexTask struct {
	script [][]byte
	tone   *toneclient.Client
	logCap kernel.Capability
	done   chan struct{}
}

func newSysexTask(script [][]byte, tone *toneclient.Client, logCap kernel.Capability) *sysexTask {
	return &sysexTask{script: script, tone: tone, logCap: logCap, done: make(chan struct{})}
}

func (t *sysexTask) Done() <-chan struct{} { return t.done }

func (t *sysexTask) Run(ctx *kernel.Context) {
	defer close(t.done)

	replyEP := ctx.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	for _, argv := range t.script {
		if err := t.tone.Sysex(ctx, argv, replyEP.Restrict(kernel.RightSend)); err != nil {
			logclient.Logf(ctx, t.logCap, "sysex: %v", err)
			return
		}
		req, ok := firmata.DecodeTone(argv)
		if !ok || req.Silent() {
			continue
		}
		if !ctx.SleepTicks(uint64(req.Duration)) {
			return
		}
		if msg, ok := ctx.TryRecv(replyEP); ok && proto.Kind(msg.Kind) == proto.MsgError {
			_, _, detail, _ := proto.DecodeErrorPayload(msg.Payload())
			logclient.Logf(ctx, t.logCap, "sysex: %s failed: %s", req, detail)
		}
	}
}
