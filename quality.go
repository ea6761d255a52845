package telefetch

import (
	"fmt"
	"sort"
	"strings"
)

// Quality is a viewer-facing quality label, identified by its pixel height.
type Quality int

func (q Quality) Height() int {
	return int(q)
}

func (q Quality) String() string {
	return fmt.Sprintf("%dp", int(q))
}

// ParseQuality extracts the numeric height from a quality label, ignoring any
// non-digit noise ("720p", "abc720pxyz" -> 720). The second return value is
// false when the label contains no digits at all.
func ParseQuality(label string) (Quality, bool) {
	digits := strings.Builder{}
	for _, r := range label {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	height := 0
	for _, r := range digits.String() {
		height = height*10 + int(r-'0')
	}
	return Quality(height), true
}

type QualityList []Quality

// SortDescending orders the list by height, highest first.
func (l QualityList) SortDescending() {
	sort.Slice(l, func(i, j int) bool { return l[i] > l[j] })
}

// Labels returns the string form of every quality, in list order.
func (l QualityList) Labels() []string {
	labels := make([]string, 0, len(l))
	for _, q := range l {
		labels = append(labels, q.String())
	}
	return labels
}

// VideoMetadata is the probe's view of a remote video: a display title and
// the viewer-selectable qualities, ordered descending by height.
type VideoMetadata struct {
	Title     string
	Qualities QualityList
}
