package codec

import (
	"fmt"
	"strings"
)

// Show is the serializable aggregate behind a share URL
type Show struct {
	LengthSeconds int     `json:"length_s" yaml:"length_s"`
	Loop          bool    `json:"loop" yaml:"loop"`
	NightSky      bool    `json:"night_sky" yaml:"night_sky"`
	Entries       []Entry `json:"fireworks" yaml:"fireworks"`
}

// Length bounds in seconds
const (
	DefaultLengthSeconds = 30
	MinLengthSeconds     = 10
	MaxLengthSeconds     = 60
)

// NewShow returns an empty show of default length
func NewShow() Show {
	return Show{LengthSeconds: DefaultLengthSeconds}
}

// LengthMS is the show length in ms
func (s Show) LengthMS() float64 {
	return float64(ClampLengthSeconds(s.LengthSeconds)) * 1000
}

// ClampLengthSeconds limits a length to the legal range
func ClampLengthSeconds(sec int) int {
	return clampInt(sec, MinLengthSeconds, MaxLengthSeconds)
}

// ChunkError describes one rejected token
type ChunkError struct {
	Index int
	Err   error
}

// DecodeError reports the chunks that were skipped; the valid entries are still returned
type DecodeError struct {
	Chunks []ChunkError
	Total  int
}

func (e *DecodeError) Error() string {
	idx := make([]string, len(e.Chunks))
	for i, c := range e.Chunks {
		idx[i] = fmt.Sprint(c.Index)
	}
	return fmt.Sprintf("codec: %d of %d tokens invalid (chunks %s)", len(e.Chunks), e.Total, strings.Join(idx, ","))
}

// Is lets errors.Is match ErrInvalidToken
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidToken
}

// Encode concatenates the tokens of every entry in list order
func Encode(s Show) string {
	length := s.LengthMS()
	var b strings.Builder
	b.Grow(len(s.Entries) * TokenLen)
	for _, e := range s.Entries {
		b.WriteString(EncodeEntry(e, length))
	}
	return b.String()
}

// Decode splits tokens into fixed windows and decodes each
// Malformed windows, including a short trailing one, are skipped and reported as *DecodeError
func Decode(tokens string, lengthMS float64) ([]Entry, error) {
	if tokens == "" {
		return nil, nil
	}

	n := (len(tokens) + TokenLen - 1) / TokenLen
	entries := make([]Entry, 0, n)
	var bad []ChunkError

	for i := 0; i < n; i++ {
		lo := i * TokenLen
		hi := min(lo+TokenLen, len(tokens))
		e, err := DecodeEntry(tokens[lo:hi], lengthMS)
		if err != nil {
			bad = append(bad, ChunkError{Index: i, Err: err})
			continue
		}
		entries = append(entries, e)
	}

	if len(bad) > 0 {
		return entries, &DecodeError{Chunks: bad, Total: n}
	}
	return entries, nil
}
