// Package metrics счётчики Prometheus, отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки action для лайков.
const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
)

// Значения метки result для писем.
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

var (
	TrackPlays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_library_track_plays_total",
		Help: "Number of started track streams.",
	})

	TrackDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_library_track_downloads_total",
		Help: "Number of track downloads.",
	})

	TrackLikes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_library_track_likes_total",
		Help: "Number of successful like and unlike actions.",
	}, []string{"action"})

	Emails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_library_emails_total",
		Help: "Number of email delivery attempts by kind and result.",
	}, []string{"kind", "result"})
)
