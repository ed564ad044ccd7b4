package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestBanner(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = orig, origNoColor })
	color.NoColor = true

	Version = "1.2.3"
	assert.Equal(t, "lintrun 1.2.3", Banner())

	Version = ""
	assert.Equal(t, "lintrun dev", Banner())
}
