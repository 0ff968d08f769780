package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession()
	assert.Empty(t, s.execPath, "default lets chromedp locate a browser")
	assert.Equal(t, 25*time.Second, s.timeout)
}

func TestNewSession_Options(t *testing.T) {
	s := NewSession(
		WithExecPath("chromium"),
		WithTimeout(40*time.Second),
	)
	assert.Equal(t, "chromium", s.execPath)
	assert.Equal(t, 40*time.Second, s.timeout)
}

func TestSession_CloseBeforeStartIsSafe(t *testing.T) {
	s := NewSession()
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
