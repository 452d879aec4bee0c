/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: escape.go
Description: Escaping rules shared by the names and data texts. The engine reads a
backslash as "take the next character literally", so punctuation with a meaning in
either file is prefixed with one. Line breaks cannot be escaped.
*/

package encoding

import (
	"errors"
	"strings"
)

// escaped lists the characters with a meaning in the names or data grammar
const escaped = `\,:;|.?`

// Escape backslash-escapes punctuation significant to the engine
func Escape(s string) string {
	if !strings.ContainsAny(s, escaped) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if strings.ContainsRune(escaped, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SplitFields splits one data row on unescaped separators, unescaping each field
func SplitFields(row string) []string {
	var fields []string
	var cur strings.Builder
	escape := false
	for _, r := range row {
		switch {
		case escape:
			cur.WriteRune(r)
			escape = false
		case r == '\\':
			escape = true
		case string(r) == FieldSeparator:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}

func checkName(name string) error {
	if name == "" {
		return errors.New("name is empty")
	}
	if strings.ContainsAny(name, "\n\r") {
		return errors.New("name contains a line break")
	}
	return nil
}

func checkLabel(label string) error {
	if label == "" {
		return errors.New("categorical label is empty")
	}
	if strings.ContainsAny(label, "\n\r") {
		return errors.New("categorical label contains a line break and cannot be escaped")
	}
	return nil
}
