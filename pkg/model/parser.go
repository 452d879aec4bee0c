/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parser.go
Description: Model text parser. Walks the header, then each committee (rules="R"), each
rule (conds="N" ...), its N condition lines and the closing coeff line, aligning the
linear formula to the training column order.
*/

package model

import (
	"strconv"
	"strings"

	"github.com/kleascm/cubist-go/pkg/interfaces"
)

// MarkerToken opens the committee section of the model header
const MarkerToken = "entries"

type line struct {
	num    int
	fields fieldLine
}

// Parse reads the model text against the training variables, in schema order
func Parse(text string, variables []string) (*Description, error) {
	lines, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(variables))
	for i, v := range variables {
		index[v] = i
	}
	p := &parser{lines: lines, index: index, width: len(variables)}

	d := &Description{Variables: append([]string(nil), variables...)}
	declared := -1
	for p.more() && p.peek().fields.first() != "rules" {
		l := p.next()
		if l.fields.first() == MarkerToken {
			s := l.fields[0].value()
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return nil, interfaces.NewModelParseError(l.num, "bad %s count %q", MarkerToken, s)
			}
			declared = n
		}
	}

	d.MaxDistance, err = ExtractMaxDistance(text)
	if err != nil {
		return nil, err
	}

	for p.more() {
		c, err := p.committee(len(d.Committees) + 1)
		if err != nil {
			return nil, err
		}
		d.Committees = append(d.Committees, *c)
	}

	if len(d.Committees) == 0 {
		return nil, interfaces.NewModelParseError(0, "model has no committees")
	}
	if declared >= 0 && declared != len(d.Committees) {
		return nil, interfaces.NewModelParseError(0, "header declares %d committees, found %d", declared, len(d.Committees))
	}
	return d, nil
}

// tokenize splits the text into non-blank field lines
func tokenize(text string) ([]line, error) {
	var out []line
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		fields, err := parseFields(raw)
		if err != nil {
			return nil, interfaces.NewModelParseError(i+1, "%v", err)
		}
		out = append(out, line{num: i + 1, fields: fields})
	}
	return out, nil
}

type parser struct {
	lines []line
	pos   int
	index map[string]int
	width int
}

func (p *parser) more() bool { return p.pos < len(p.lines) }
func (p *parser) peek() line { return p.lines[p.pos] }

func (p *parser) next() line {
	l := p.lines[p.pos]
	p.pos++
	return l
}

// expect consumes the next line, which must start with key
func (p *parser) expect(key, context string) (line, error) {
	if !p.more() {
		return line{}, interfaces.NewModelParseError(0, "unexpected end of model: %s", context)
	}
	l := p.next()
	if l.fields.first() != key {
		return line{}, interfaces.NewModelParseError(l.num, "expected %s line, found %q (%s)", key, l.fields.first(), context)
	}
	return l, nil
}

func (p *parser) committee(number int) (*Committee, error) {
	head, err := p.expect("rules", "committee header")
	if err != nil {
		return nil, err
	}
	n, err := head.fields.int("rules")
	if err != nil {
		return nil, interfaces.NewModelParseError(head.num, "%v", err)
	}

	c := &Committee{Number: number}
	for i := 1; i <= n; i++ {
		r, err := p.rule(number, i)
		if err != nil {
			return nil, err
		}
		c.Rules = append(c.Rules, *r)
	}
	return c, nil
}

func (p *parser) rule(committee, number int) (*Rule, error) {
	context := "committee " + strconv.Itoa(committee) + " rule " + strconv.Itoa(number)
	head, err := p.expect("conds", context)
	if err != nil {
		return nil, err
	}

	r := &Rule{Committee: committee, Number: number}
	n, err := head.fields.int("conds")
	if err != nil {
		return nil, interfaces.NewModelParseError(head.num, "%v", err)
	}
	for _, s := range []struct {
		key string
		dst *float64
	}{
		{"cover", &r.Cover},
		{"mean", &r.Mean},
		{"loval", &r.Low},
		{"hival", &r.High},
		{"esterr", &r.EstErr},
	} {
		if *s.dst, err = head.fields.optFloat(s.key); err != nil {
			return nil, interfaces.NewModelParseError(head.num, "%v", err)
		}
	}

	for i := 0; i < n; i++ {
		l, err := p.expect("type", context+" condition")
		if err != nil {
			return nil, err
		}
		cond, err := p.condition(l)
		if err != nil {
			return nil, err
		}
		r.Conditions = append(r.Conditions, *cond)
	}

	l, err := p.expect("coeff", context+" is unterminated")
	if err != nil {
		return nil, err
	}
	if err := p.coefficients(l, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *parser) condition(l line) (*Condition, error) {
	kind, _ := l.fields.get("type")
	att, ok := l.fields.get("att")
	if !ok {
		return nil, interfaces.NewModelParseError(l.num, "condition has no att")
	}
	if _, known := p.index[att]; !known {
		return nil, interfaces.NewModelParseError(l.num, "condition on unknown variable %q", att)
	}

	c := &Condition{Attribute: att}
	switch kind {
	case "1":
		val, ok := l.fields.get("val")
		if !ok {
			return nil, interfaces.NewModelParseError(l.num, "discrete condition has no val")
		}
		c.Type = Membership
		c.Labels = []string{val}
	case "2":
		cut, err := l.fields.float("cut")
		if err != nil {
			return nil, interfaces.NewModelParseError(l.num, "%v", err)
		}
		result, _ := l.fields.get("result")
		switch result {
		case "<", "<=":
			// the engine writes "<" for "at most"
			c.Operator = LessOrEqual
		case ">":
			c.Operator = GreaterThan
		case ">=":
			c.Operator = GreaterOrEqual
		default:
			return nil, interfaces.NewModelParseError(l.num, "unknown threshold result %q", result)
		}
		c.Type = Threshold
		c.Cut = cut
	case "3":
		for _, f := range l.fields {
			if f.key == "elts" {
				c.Labels = append(c.Labels, f.values...)
			}
		}
		if len(c.Labels) == 0 {
			return nil, interfaces.NewModelParseError(l.num, "subset condition has no elts")
		}
		c.Type = Membership
	default:
		return nil, interfaces.NewModelParseError(l.num, "unknown condition type %q", kind)
	}
	return c, nil
}

// coefficients reads coeff="<intercept>" followed by att="x" coeff="v" pairs
func (p *parser) coefficients(l line, r *Rule) error {
	intercept, err := strconv.ParseFloat(l.fields[0].value(), 64)
	if err != nil {
		return interfaces.NewModelParseError(l.num, "bad intercept %q", l.fields[0].value())
	}
	r.Intercept = intercept
	r.Coefficients = make([]NullFloat, p.width)

	terms := l.fields[1:]
	if len(terms)%2 != 0 {
		return interfaces.NewModelParseError(l.num, "coefficient terms are not att/coeff pairs")
	}
	if len(terms)/2 > p.width {
		return interfaces.NewModelParseError(l.num, "%d coefficients for %d variables", len(terms)/2, p.width)
	}
	for i := 0; i < len(terms); i += 2 {
		att, coef := terms[i], terms[i+1]
		if att.key != "att" || coef.key != "coeff" {
			return interfaces.NewModelParseError(l.num, "expected att/coeff pair, found %s/%s", att.key, coef.key)
		}
		slot, ok := p.index[att.value()]
		if !ok {
			return interfaces.NewModelParseError(l.num, "coefficient for unknown variable %q", att.value())
		}
		if r.Coefficients[slot].Valid {
			return interfaces.NewModelParseError(l.num, "duplicate coefficient for %q", att.value())
		}
		v, err := strconv.ParseFloat(coef.value(), 64)
		if err != nil {
			return interfaces.NewModelParseError(l.num, "bad coefficient %q for %q", coef.value(), att.value())
		}
		r.Coefficients[slot] = Some(v)
	}
	return nil
}
