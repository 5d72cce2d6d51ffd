package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/spesapp/cmd/tui/internal/view"
)

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+12,5%", view.FormatPercent(12.5))
	assert.Equal(t, "-25,0%", view.FormatPercent(-25))
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "venerdì 1 Marzo", view.FormatDay("2024-03-01"))
	assert.Equal(t, "not-a-day", view.FormatDay("not-a-day"))
}
