/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package healthcheck

import (
	"fmt"
	"strings"
)

// Category is a traffic-light answer to a single question.
type Category string

const (
	Red    Category = "red"
	Yellow Category = "yellow"
	Green  Category = "green"
)

// Categories lists every accepted answer, in display order.
var Categories = []Category{Red, Yellow, Green}

func (c Category) valid() bool {
	switch c {
	case Red, Yellow, Green:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Tally holds per-category counts. All three keys are always present on the wire.
type Tally struct {
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
}

func (t Tally) Total() int {
	return t.Red + t.Yellow + t.Green
}

// Aggregate counts the answers by category. Any unknown value rejects the
// whole input.
func Aggregate(answers []Category) (Tally, error) {
	var t Tally
	for _, a := range answers {
		switch a {
		case Red:
			t.Red++
		case Yellow:
			t.Yellow++
		case Green:
			t.Green++
		default:
			return Tally{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(a))
		}
	}
	return t, nil
}
