package audio

import (
	"math"
	"math/rand"

	"github.com/gopxl/beep"
)

// SampleRate of every generated cue
const SampleRate = beep.SampleRate(44100)

// Waveform types
const (
	waveSine = iota
	waveSquare
	waveSaw
	waveNoise
)

// floatBuffer is mono float64 samples at unity gain
type floatBuffer []float64

// sweep generates a waveform whose frequency moves linearly from f0 to f1
func sweep(wave int, f0, f1 float64, samples int, rng *rand.Rand) floatBuffer {
	buf := make(floatBuffer, samples)
	phase := 0.0
	for i := range buf {
		t := float64(i) / float64(max(samples-1, 1))
		freq := f0 + (f1-f0)*t

		switch wave {
		case waveSine:
			buf[i] = math.Sin(2 * math.Pi * phase)
		case waveSquare:
			if phase < 0.5 {
				buf[i] = 1.0
			} else {
				buf[i] = -1.0
			}
		case waveSaw:
			buf[i] = 2.0 * (phase - 0.5)
		case waveNoise:
			buf[i] = rng.Float64()*2 - 1
		}

		phase += freq / float64(SampleRate)
		phase -= math.Floor(phase)
	}
	return buf
}

// applyEnvelope applies linear attack and release in place
func applyEnvelope(buf floatBuffer, attackSec, releaseSec float64) {
	total := len(buf)
	attack := int(attackSec * float64(SampleRate))
	release := int(releaseSec * float64(SampleRate))

	releaseStart := max(total-release, attack)
	for i := range buf {
		vol := 1.0
		if i < attack && attack > 0 {
			vol = float64(i) / float64(attack)
		} else if i >= releaseStart && release > 0 {
			vol = float64(total-i) / float64(release)
		}
		buf[i] *= vol
	}
}

// applyDecay multiplies by exp(-rate·t)
func applyDecay(buf floatBuffer, rate float64) {
	for i := range buf {
		buf[i] *= math.Exp(-rate * float64(i) / float64(SampleRate))
	}
}

// lowPass is a one-pole filter, alpha in (0, 1], lower is darker
func lowPass(buf floatBuffer, alpha float64) {
	prev := 0.0
	for i, v := range buf {
		prev += alpha * (v - prev)
		buf[i] = prev
	}
}

// mixInto adds b into a scaled by gain, extending a if needed
func mixInto(a, b floatBuffer, gain float64) floatBuffer {
	if len(b) > len(a) {
		extended := make(floatBuffer, len(b))
		copy(extended, a)
		a = extended
	}
	for i := range b {
		a[i] += b[i] * gain
	}
	return a
}

func normalize(buf floatBuffer, peak float64) {
	m := 0.0
	for _, v := range buf {
		m = math.Max(m, math.Abs(v))
	}
	if m == 0 {
		return
	}
	g := peak / m
	for i := range buf {
		buf[i] *= g
	}
}

// --- Cue generators (normalized to 0.8 peak) ---

func generateCue(c Cue, rng *rand.Rand) floatBuffer {
	n := SampleRate.N(c.Duration())
	var buf floatBuffer

	switch c {
	case CueWhistle, CueWhistleLow:
		f0, f1 := 900.0, 2600.0
		if c == CueWhistleLow {
			f0, f1 = 500.0, 1500.0
		}
		buf = sweep(waveSine, f0, f1, n, rng)
		air := sweep(waveNoise, 0, 0, n, rng)
		lowPass(air, 0.2)
		buf = mixInto(buf, air, 0.15)
		applyEnvelope(buf, 0.05, 0.2)

	case CueWhoosh:
		buf = sweep(waveNoise, 0, 0, n, rng)
		lowPass(buf, 0.08)
		applyEnvelope(buf, 0.25, 0.35)

	case CueBoom, CueBoomDeep:
		f0, decay := 90.0, 4.0
		if c == CueBoomDeep {
			f0, decay = 55.0, 2.5
		}
		buf = sweep(waveSine, f0, f0*0.4, n, rng)
		tail := sweep(waveNoise, 0, 0, n, rng)
		lowPass(tail, 0.05)
		buf = mixInto(buf, tail, 0.6)
		applyEnvelope(buf, 0.005, 0.1)
		applyDecay(buf, decay)

	case CuePop:
		buf = sweep(waveNoise, 0, 0, n, rng)
		lowPass(buf, 0.5)
		applyDecay(buf, 25)

	case CueCrackle:
		buf = make(floatBuffer, n)
		click := SampleRate.N(c.Duration()) / 400
		for i := 0; i < 60; i++ {
			at := rng.Intn(max(n-click, 1))
			amp := 0.3 + rng.Float64()*0.7
			for j := 0; j < click && at+j < n; j++ {
				buf[at+j] += amp * (rng.Float64()*2 - 1) * (1 - float64(j)/float64(click))
			}
		}
		applyDecay(buf, 1.5)

	case CueZap:
		buf = sweep(waveSquare, 1800, 300, n, rng)
		applyEnvelope(buf, 0.002, 0.15)
		lowPass(buf, 0.4)

	default:
		return nil
	}

	normalize(buf, 0.8)
	return buf
}

// bufferStreamer plays a mono buffer on both channels once
type bufferStreamer struct {
	buf floatBuffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	for i := range samples {
		if s.pos >= len(s.buf) {
			return i, true
		}
		v := s.buf[s.pos]
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
	}
	return len(samples), true
}

func (s *bufferStreamer) Err() error { return nil }

func (s *bufferStreamer) Len() int { return len(s.buf) }

func (s *bufferStreamer) Position() int { return s.pos }

func (s *bufferStreamer) Seek(p int) error {
	s.pos = min(max(p, 0), len(s.buf))
	return nil
}
