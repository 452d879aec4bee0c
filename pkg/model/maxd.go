/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: maxd.go
Description: Extraction of the maximum-distance parameter from the model header and
normalisation of the stored model text to its instances-off form.
*/

package model

import (
	"regexp"
	"strconv"

	"github.com/kleascm/cubist-go/pkg/interfaces"
)

// InstancesOff is the canonical disabled-correction header attribute
const InstancesOff = `insts="0"`

var instancesOn = regexp.MustCompile(`insts="1" nn="(\d+)" maxd="([^"]*)"`)

// ExtractMaxDistance returns the header maxd value, invalid when the model was
// not built with instance statistics
func ExtractMaxDistance(text string) (NullFloat, error) {
	m := instancesOn.FindStringSubmatch(text)
	if m == nil {
		return NullFloat{}, nil
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil || v < 0 {
		return NullFloat{}, interfaces.NewModelParseError(0, "bad maxd value %q", m[2])
	}
	return Some(v), nil
}

// Normalize rewrites the instances-on header attribute to InstancesOff and returns
// the extracted maxd. Text already in the disabled form is returned unchanged.
func Normalize(text string) (string, NullFloat, error) {
	loc := instancesOn.FindStringIndex(text)
	if loc == nil {
		return text, NullFloat{}, nil
	}
	maxd, err := ExtractMaxDistance(text)
	if err != nil {
		return "", NullFloat{}, err
	}
	return text[:loc[0]] + InstancesOff + text[loc[1]:], maxd, nil
}
