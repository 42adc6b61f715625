package preferences

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidPolicy = errors.New("invalid inclusion policy")

// InclusionPolicy selects which planned slots count as studied time.
type InclusionPolicy bool

const (
	// AchievementsOnly counts a slot only when its achievement is completed or partial.
	AchievementsOnly InclusionPolicy = true
	// AllPlanned counts every planned slot.
	AllPlanned InclusionPolicy = false
)

// ParsePolicy reads the stored form, "true" meaning achievements only.
func ParsePolicy(s string) (InclusionPolicy, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return AchievementsOnly, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
	return InclusionPolicy(b), nil
}

func (p InclusionPolicy) String() string {
	return strconv.FormatBool(bool(p))
}

// Name is the label used by the API.
func (p InclusionPolicy) Name() string {
	if p == AchievementsOnly {
		return "achievementsOnly"
	}
	return "allPlanned"
}
