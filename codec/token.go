// Package codec converts shows to and from the share URL
//
// Every firework is one fixed-width token of TokenLen characters; tokens are concatenated
// without a delimiter into the f query parameter. Quantization makes the round trip lossy
// but stable: decoding an encoded show and encoding it again yields the same string.
package codec

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/fireworks/firework"
	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/trajectory"
	"github.com/lixenwraith/fireworks/vmath"
)

// TokenLen is the width of one encoded firework
const TokenLen = 23

// Token field offsets
const (
	offShape     = 0
	offColors    = 1
	offScale     = 10
	offAudio     = 12
	offX         = 13
	offY         = 15
	offAspect    = 17
	offExplosion = 19
)

const (
	// ColorStep is the channel quantization granularity
	ColorStep   = 0.05
	colorLevels = 21
	permille    = 1000
	// percentHundred replaces "100" so positions fit two characters
	percentHundred = "a0"
)

// ErrInvalidToken marks a chunk that could not be decoded
var ErrInvalidToken = errors.New("codec: invalid token")

// colorDigits maps a quantized channel level to its character
var colorDigits = [colorLevels]byte{
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
	'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k',
}

// colorLevel is the inverse of colorDigits, -1 for characters outside the alphabet
var colorLevel = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for lvl, c := range colorDigits {
		t[c] = int8(lvl)
	}
	return t
}()

// audioFlags maps the audio digit to the launch and explosion toggles
var audioFlags = [4]struct{ launch, explosion bool }{
	{false, false},
	{true, false},
	{false, true},
	{true, true},
}

// Entry is one decoded firework: its params and the explosion time on the timeline
type Entry struct {
	Params        firework.Params `json:"params" yaml:"params"`
	ExplosionTime float64         `json:"explosion_ms" yaml:"explosion_ms"`
}

// EncodeEntry renders one firework token
// Values outside the wire ranges are clamped so the output always decodes
func EncodeEntry(e Entry, lengthMS float64) string {
	p := e.Params.Clamped()
	var b strings.Builder
	b.Grow(TokenLen)

	b.WriteByte('0' + byte(p.Shape))
	for _, c := range [3]vmath.Color{p.LaunchColor, p.NearColor, p.FarColor} {
		for _, ch := range [3]float64{c.R, c.G, c.B} {
			b.WriteByte(colorDigits[quantizeChannel(ch)])
		}
	}
	fmt.Fprintf(&b, "%02d", clampInt(int(math.Round(p.Scale*10)), 5, 30))
	b.WriteByte('0' + audioDigit(p.LaunchAudio, p.ExplosionAudio))
	b.WriteString(encodePercent(p.Position.X))
	b.WriteString(encodePercent(p.Position.Y))
	fmt.Fprintf(&b, "%02d", clampInt(int(math.Round(p.Aspect*10)), 1, 99))

	pm := 0
	if lengthMS > 0 {
		pm = int(math.Round(e.ExplosionTime / lengthMS * permille))
	}
	fmt.Fprintf(&b, "%04d", clampInt(pm, 0, permille))
	return b.String()
}

// DecodeEntry parses one token
func DecodeEntry(tok string, lengthMS float64) (Entry, error) {
	if len(tok) != TokenLen {
		return Entry{}, fmt.Errorf("%w: length %d", ErrInvalidToken, len(tok))
	}

	var p firework.Params

	shape := int(tok[offShape]) - '0'
	if shape < 0 || shape >= trajectory.ShapeCount {
		return Entry{}, fmt.Errorf("%w: shape %q", ErrInvalidToken, tok[offShape])
	}
	p.Shape = trajectory.Shape(shape)

	colors := [3]*vmath.Color{&p.LaunchColor, &p.NearColor, &p.FarColor}
	for i, c := range colors {
		var ch [3]float64
		for j := range ch {
			lvl := colorLevel[tok[offColors+i*3+j]]
			if lvl < 0 {
				return Entry{}, fmt.Errorf("%w: color %q", ErrInvalidToken, tok[offColors+i*3+j])
			}
			ch[j] = float64(lvl) * ColorStep
		}
		*c = vmath.Color{R: ch[0], G: ch[1], B: ch[2]}
	}

	scale, ok := decimal(tok[offScale : offScale+2])
	if !ok || scale < 5 || scale > 30 {
		return Entry{}, fmt.Errorf("%w: scale %q", ErrInvalidToken, tok[offScale:offScale+2])
	}
	p.Scale = float64(scale) / 10

	audio := int(tok[offAudio]) - '0'
	if audio < 0 || audio >= len(audioFlags) {
		return Entry{}, fmt.Errorf("%w: audio %q", ErrInvalidToken, tok[offAudio])
	}
	p.LaunchAudio, p.ExplosionAudio = audioFlags[audio].launch, audioFlags[audio].explosion

	x, ok := decodePercent(tok[offX : offX+2])
	if !ok {
		return Entry{}, fmt.Errorf("%w: x %q", ErrInvalidToken, tok[offX:offX+2])
	}
	y, ok := decodePercent(tok[offY : offY+2])
	if !ok {
		return Entry{}, fmt.Errorf("%w: y %q", ErrInvalidToken, tok[offY:offY+2])
	}
	p.Position = projection.Normalized{X: float64(x), Y: float64(y)}

	aspect, ok := decimal(tok[offAspect : offAspect+2])
	if !ok || aspect < 1 {
		return Entry{}, fmt.Errorf("%w: aspect %q", ErrInvalidToken, tok[offAspect:offAspect+2])
	}
	p.Aspect = float64(aspect) / 10

	pm, ok := decimal(tok[offExplosion : offExplosion+4])
	if !ok || pm > permille {
		return Entry{}, fmt.Errorf("%w: explosion %q", ErrInvalidToken, tok[offExplosion:])
	}

	return Entry{
		Params:        p,
		ExplosionTime: float64(pm) / permille * lengthMS,
	}, nil
}

func quantizeChannel(v float64) int {
	return clampInt(int(math.Round(vmath.Clamp01(v)/ColorStep)), 0, colorLevels-1)
}

func audioDigit(launch, explosion bool) byte {
	var d byte
	if launch {
		d |= 1
	}
	if explosion {
		d |= 2
	}
	return d
}

func encodePercent(v float64) string {
	n := clampInt(int(math.Round(v)), 0, 100)
	if n == 100 {
		return percentHundred
	}
	return fmt.Sprintf("%02d", n)
}

func decodePercent(s string) (int, bool) {
	if s == percentHundred {
		return 100, true
	}
	return decimal(s)
}

// decimal parses a fixed-width run of ASCII digits
func decimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func clampInt(v, lo, hi int) int {
	return vmath.ClampInt(v, lo, hi)
}
