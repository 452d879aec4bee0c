/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fields.go
Description: Tokeniser for the key="value" lines of the model text. A key may carry a
comma separated list of quoted values (elts="a","b"). Keys repeat on coefficient lines,
so fields are kept in order.
*/

package model

import (
	"fmt"
	"strconv"
	"strings"
)

type field struct {
	key    string
	values []string
}

func (f field) value() string {
	if len(f.values) == 0 {
		return ""
	}
	return f.values[0]
}

type fieldLine []field

// get returns the first value of key
func (l fieldLine) get(key string) (string, bool) {
	for _, f := range l {
		if f.key == key {
			return f.value(), true
		}
	}
	return "", false
}

func (l fieldLine) first() string {
	if len(l) == 0 {
		return ""
	}
	return l[0].key
}

// float reads a numeric value; missing keys are an error
func (l fieldLine) float(key string) (float64, error) {
	s, ok := l.get(key)
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", key, s)
	}
	return v, nil
}

// optFloat reads a numeric value, zero when the key is absent
func (l fieldLine) optFloat(key string) (float64, error) {
	if _, ok := l.get(key); !ok {
		return 0, nil
	}
	return l.float(key)
}

func (l fieldLine) int(key string) (int, error) {
	s, ok := l.get(key)
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("bad %s count %q", key, s)
	}
	return v, nil
}

// parseFields splits one model line into its fields
func parseFields(line string) (fieldLine, error) {
	var out fieldLine
	i := 0
	n := len(line)
	for {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			return out, nil
		}

		eq := strings.IndexByte(line[i:], '=')
		if eq <= 0 {
			return nil, fmt.Errorf("expected key=\"value\" at column %d", i+1)
		}
		key := line[i : i+eq]
		if strings.ContainsAny(key, " \t\"") {
			return nil, fmt.Errorf("malformed key %q", key)
		}
		i += eq + 1

		f := field{key: key}
		for {
			v, next, err := quoted(line, i)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			f.values = append(f.values, v)
			i = next
			if i+1 < n && line[i] == ',' && line[i+1] == '"' {
				i++
				continue
			}
			break
		}
		out = append(out, f)
	}
}

// quoted reads a double-quoted string starting at i, honouring backslash escapes
func quoted(line string, i int) (string, int, error) {
	if i >= len(line) || line[i] != '"' {
		return "", i, fmt.Errorf("expected opening quote at column %d", i+1)
	}
	var b strings.Builder
	for j := i + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			if j+1 < len(line) {
				j++
				b.WriteByte(line[j])
			}
		case '"':
			return b.String(), j + 1, nil
		default:
			b.WriteByte(line[j])
		}
	}
	return "", len(line), fmt.Errorf("unterminated quote starting at column %d", i+1)
}
