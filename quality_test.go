package telefetch

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestParseQuality(t *testing.T) {
	assert := assert_.New(t)

	for label, expected := range map[string]Quality{
		"720p":      720,
		"1080p":     1080,
		"360":       360,
		"abc720pxyz": 720,
		" 480p ":    480,
	} {
		q, ok := ParseQuality(label)
		assert.True(ok, "label %q", label)
		assert.Equal(expected, q, "label %q", label)
	}

	for _, label := range []string{"", "best", "p"} {
		_, ok := ParseQuality(label)
		assert.False(ok, "label %q", label)
	}
}

func TestQualityList(t *testing.T) {
	assert := assert_.New(t)

	l := QualityList{360, 1080, 720}
	l.SortDescending()
	assert.Equal(QualityList{1080, 720, 360}, l)
	assert.Equal([]string{"1080p", "720p", "360p"}, l.Labels())
}
