package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHeightReservesNav(t *testing.T) {
	l := NewLayout(80, 24)
	assert.Equal(t, 22, l.ContentHeight())

	l = l.ShowNav(true)
	assert.Equal(t, 21, l.ContentHeight())
	assert.Equal(t, 22, l.ShowNav(false).ContentHeight())

	assert.Zero(t, NewLayout(80, 1).ContentHeight())
}

func TestRenderWithFrameOmitsHiddenNav(t *testing.T) {
	l := NewLayout(40, 10)
	out := l.RenderWithFrame("head", "body", "NAV", "status")
	assert.NotContains(t, out, "NAV")
	assert.Equal(t, 10, len(strings.Split(out, "\n")))

	l = l.ShowNav(true)
	out = l.RenderWithFrame("head", "body", "NAV", "status")
	assert.Contains(t, out, "NAV")
	assert.Equal(t, 10, len(strings.Split(out, "\n")))
}
