package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(TrackPlays)
	TrackPlays.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TrackPlays))

	likes := TrackLikes.WithLabelValues(ActionLike)
	before = testutil.ToFloat64(likes)
	likes.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(likes))

	emails := Emails.WithLabelValues("activation", ResultFailed)
	before = testutil.ToFloat64(emails)
	emails.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(emails))
}
