// Package console sends text to the console service.
package console

import (
	"fmt"

	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/proto"
)

// Write sends a best-effort payload to the console. Payloads longer than one
// message are split.
func Write(ctx *kernel.Context, conCap kernel.Capability, b []byte) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	res := kernel.SendOK
	for len(b) > 0 {
		n := min(len(b), kernel.MaxMessageBytes)
		res = ctx.SendToCapResult(conCap, uint16(proto.MsgConsoleWrite), proto.ConsoleWritePayload(b[:n]), kernel.Capability{})
		if res != kernel.SendOK {
			return res
		}
		b = b[n:]
	}
	return res
}

// Linef writes a formatted line terminated with CR LF.
func Linef(ctx *kernel.Context, conCap kernel.Capability, format string, args ...any) kernel.SendResult {
	return Write(ctx, conCap, []byte(fmt.Sprintf(format, args...)+"\r\n"))
}

// Clear resets the terminal.
func Clear(ctx *kernel.Context, conCap kernel.Capability) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	return ctx.SendToCapResult(conCap, uint16(proto.MsgConsoleClear), nil, kernel.Capability{})
}
