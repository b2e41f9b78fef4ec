package codec

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query parameter names
const (
	ParamFireworks = "f"
	ParamLength    = "l"
	ParamLoop      = "r"
	ParamNightSky  = "n"
)

// EncodeQuery renders the four share parameters
func EncodeQuery(s Show) url.Values {
	v := url.Values{}
	v.Set(ParamFireworks, Encode(s))
	v.Set(ParamLength, strconv.Itoa(ClampLengthSeconds(s.LengthSeconds)))
	v.Set(ParamLoop, flag(s.Loop))
	v.Set(ParamNightSky, flag(s.NightSky))
	return v
}

// ParseQuery rebuilds a show from share parameters
// present reports whether f was in the query at all; an absent f is an empty show, an empty f
// a show with no fireworks. A *DecodeError still comes with every valid entry.
func ParseQuery(v url.Values) (s Show, present bool, err error) {
	s = NewShow()

	if raw := v.Get(ParamLength); raw != "" {
		if sec, perr := strconv.Atoi(raw); perr == nil {
			s.LengthSeconds = ClampLengthSeconds(sec)
		}
	}
	s.Loop = v.Get(ParamLoop) == "1"
	s.NightSky = v.Get(ParamNightSky) == "1"

	tokens, present := v[ParamFireworks]
	if !present {
		return s, false, nil
	}
	raw := ""
	if len(tokens) > 0 {
		raw = tokens[0]
	}
	s.Entries, err = Decode(raw, s.LengthMS())
	if s.Entries == nil {
		s.Entries = []Entry{}
	}
	return s, true, err
}

// ParseURL accepts a full share URL or a bare query string
func ParseURL(raw string) (Show, bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return NewShow(), false, fmt.Errorf("codec: parse url: %w", err)
	}
	q := u.RawQuery
	if q == "" && u.Scheme == "" && u.Host == "" {
		q = u.Path
		if len(q) > 0 && q[0] == '?' {
			q = q[1:]
		}
	}
	v, err := url.ParseQuery(q)
	if err != nil {
		return NewShow(), false, fmt.Errorf("codec: parse query: %w", err)
	}
	return ParseQuery(v)
}

// ShareURL applies the show to base, replacing any previous share parameters
func ShareURL(base string, s Show) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("codec: parse base url: %w", err)
	}
	q := u.Query()
	for k, vs := range EncodeQuery(s) {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
