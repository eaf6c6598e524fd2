package jsonx

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoObject is returned when no JSON object could be recovered from the
// text after every repair attempt.
var ErrNoObject = eris.New("jsonx: no parseable object found")

// ExtractObject recovers the first JSON object embedded in model output.
// It tries, in order: a balanced {...} span parsed directly, then each
// repair stacked on top, then the widest first-{ to last-} span with the
// same repair ladder. It never panics; failure is ErrNoObject.
func ExtractObject(text string) (map[string]any, error) {
	candidates := []string{}
	if span := balancedSpan(text); span != "" {
		candidates = append(candidates, span)
	}
	if span := outerSpan(text); span != "" && (len(candidates) == 0 || span != candidates[0]) {
		candidates = append(candidates, span)
	}

	for _, candidate := range candidates {
		if obj, ok := tryParse(candidate); ok {
			return obj, nil
		}
		s := candidate
		for _, repair := range repairChain {
			s = repair(s)
			if obj, ok := tryParse(s); ok {
				return obj, nil
			}
		}
	}

	return nil, ErrNoObject
}

// ExtractInto recovers a JSON object and unmarshals it into v via a
// round-trip through the recovered map.
func ExtractInto(text string, v any) error {
	obj, err := ExtractObject(text)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return eris.Wrap(err, "jsonx: remarshal")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return eris.Wrap(err, "jsonx: unmarshal into target")
	}
	return nil
}

func tryParse(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// balancedSpan returns the first brace-balanced {...} span, tracking
// strings and escapes so braces inside literals don't count. Returns ""
// when no span closes.
func balancedSpan(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// outerSpan returns the substring between the first '{' and the last '}'.
func outerSpan(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
