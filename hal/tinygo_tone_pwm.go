//go:build tinygo && baremetal

package hal

import (
	"machine"
	"sync"
	"time"

	"tinygo.org/x/drivers/tone"
)

// pwmToneBank drives one tone.Speaker per pin.
//
// Pins that share a PWM slice share its period, so two tones on the same slice
// interfere; use pins on different slices for simultaneous tones.
type pwmToneBank struct {
	mu       sync.Mutex
	logger   Logger
	speakers map[uint8]*pwmVoice
}

type pwmVoice struct {
	spk tone.Speaker
	gen uint32
}

func newPWMToneBank(logger Logger) *pwmToneBank {
	return &pwmToneBank{logger: logger, speakers: make(map[uint8]*pwmVoice)}
}

func pwmForPin(pin machine.Pin) tone.PWM {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

func (b *pwmToneBank) voiceLocked(pin uint8) (*pwmVoice, error) {
	if v, ok := b.speakers[pin]; ok {
		return v, nil
	}
	mp := machine.Pin(pin)
	pwm := pwmForPin(mp)
	if pwm == nil {
		return nil, ErrNoPin
	}
	spk, err := tone.New(pwm, mp)
	if err != nil {
		return nil, err
	}
	v := &pwmVoice{spk: spk}
	b.speakers[pin] = v
	return v, nil
}

func (b *pwmToneBank) Tone(pin uint8, freqHz uint16, d time.Duration) error {
	if freqHz == 0 {
		return b.NoTone(pin)
	}

	b.mu.Lock()
	v, err := b.voiceLocked(pin)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	v.gen++
	gen := v.gen
	v.spk.SetPeriod(uint64(1e9) / uint64(freqHz))
	b.mu.Unlock()

	if d > 0 {
		time.AfterFunc(d, func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			// A newer Tone or NoTone owns the pin now.
			if v.gen == gen {
				v.spk.Stop()
			}
		})
	}
	return nil
}

func (b *pwmToneBank) NoTone(pin uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.speakers[pin]
	if !ok {
		return nil
	}
	v.gen++
	v.spk.Stop()
	return nil
}

// SetVolume only logs: the speaker drives a fixed 50% duty square wave.
func (b *pwmToneBank) SetVolume(uint8) {
	if b.logger != nil {
		b.logger.WriteLineString("tone: volume is fixed on pwm outputs")
	}
}
