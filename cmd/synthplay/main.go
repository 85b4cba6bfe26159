// Command synthplay is a minimal example host: it builds a small
// synthesizer definition in code and streams its output to the speakers
// via oto.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/synthcore/synthcore"
)

const (
	sampleRate     = 44100
	channelCount   = 2
	bytesPerSample = 2

	vibratoRateHz = 5 // LFO cycles per second
)

// vibratoCurve builds a Bezier control-point sequence oscillating between 0
// and 1 at vibratoRateHz across [0, durationSeconds], compiled into a
// controller curve that drives a wave source's frequency target.
func vibratoCurve(durationSeconds float64) *synthcore.Curve {
	halfPeriod := 0.5 / vibratoRateHz
	var points []synthcore.CurvePoint
	y := 0.0
	for x := 0.0; x <= durationSeconds+halfPeriod; x += halfPeriod {
		points = append(points, synthcore.CurvePoint{X: x, Y: y})
		if y == 0 {
			y = 1
		} else {
			y = 0
		}
	}
	return synthcore.NewBezierCurve(points)
}

// instancePlayer adapts a *synthcore.SynthesizerInstance to io.Reader so
// oto can pull PCM from it.
type instancePlayer struct {
	inst      atomic.Pointer[synthcore.SynthesizerInstance]
	byteOffset int
}

func (p *instancePlayer) Read(out []byte) (int, error) {
	inst := p.inst.Load()
	frameSize := channelCount * bytesPerSample
	samples := len(out) / frameSize
	if samples == 0 {
		return 0, nil
	}
	n := samples * frameSize
	if inst == nil {
		for i := range out[:n] {
			out[i] = 0
		}
		return n, nil
	}
	if err := inst.Produce(out[:n], p.byteOffset, samples); err != nil {
		return 0, err
	}
	p.byteOffset += samples
	return n, nil
}

func main() {
	freq := flag.Float64("freq", 440, "wave frequency in Hz")
	seconds := flag.Float64("seconds", 3, "playback duration in seconds")
	flag.Parse()

	synth := synthcore.NewSynthesizer()
	synth.SetChannels(channelCount)
	synth.SetSampleRate(sampleRate)
	synth.SetBytesPerSample(bytesPerSample)
	synth.ControllersChanged([]synthcore.ControllerDef{
		{Min: 0, Max: 1, Clamp: true, Curve: vibratoCurve(*seconds)},
	})
	synth.SourcesChanged([]synthcore.SourceDef{
		synthcore.WaveDef{
			MixMode:      synthcore.MixAdd,
			MinVolume:    0,
			MaxVolume:    0.5,
			VolumeLinks:  nil,
			MinPanning:   -1,
			MaxPanning:   1,
			WaveType:     synthcore.WaveSine,
			MinFrequency: *freq * 0.98,
			MaxFrequency: *freq * 1.02,
			FrequencyLinks: []synthcore.LinkDef{
				{ControllerIndex: 0},
			},
		},
	})

	inst := synthcore.NewSynthesizerInstance(synthcore.NewSharedBufferPool())
	inst.SetSynthesizer(synth)

	player := &instancePlayer{}
	player.inst.Store(inst)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Millisecond * 50,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "synthplay: open audio context: %v\n", err)
		os.Exit(1)
	}
	<-ready

	otoPlayer := ctx.NewPlayer(player)
	otoPlayer.Play()
	defer otoPlayer.Close()

	time.Sleep(time.Duration(*seconds * float64(time.Second)))
}
