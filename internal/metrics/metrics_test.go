package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncSlotLoad("loaded")
		ObserveSlotLoad(50 * time.Millisecond)
		IncSubmission("success")
		ObserveSubmission(120 * time.Millisecond)
	})
}
