//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	var steps int
	var got HAL
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		got = h
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Hz: 500, Ticks: 3})

	require.NoError(t, err)
	assert.Equal(t, 3, steps)
	require.NotNil(t, got)
	assert.NotNil(t, got.Tone())
	assert.Equal(t, 320, got.Display().Framebuffer().Width())
}

func TestRunHeadlessReturnsStepError(t *testing.T) {
	done := errors.New("song finished")
	err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { return done }
	}, HeadlessConfig{Hz: 500})
	assert.ErrorIs(t, err, done)
}

func TestRunHeadlessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunHeadless(ctx, func(HAL) func() error { return nil }, HeadlessConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHostTimeAdvanceEmitsTicks(t *testing.T) {
	ht := newHostTime()
	ht.advance()
	select {
	case seq := <-ht.Ticks():
		assert.Equal(t, uint64(1), seq)
	default:
		t.Fatal("expected first tick")
	}
}

func TestFramebufferClear(t *testing.T) {
	fb := newHostFramebuffer(2, 2)
	fb.ClearRGB(0xFF, 0xFF, 0xFF)
	for _, b := range fb.Buffer() {
		assert.Equal(t, byte(0xFF), b)
	}
	r, g, b := rgb888From565(rgb565(0xFF, 0, 0))
	assert.Equal(t, [3]uint8{0xFF, 0, 0}, [3]uint8{r, g, b})
}
