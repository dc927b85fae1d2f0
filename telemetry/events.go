// Package telemetry provides coverage tracking, visibility event detection,
// and frame timing for sensor runs.
package telemetry

import (
	"fmt"
	"log/slog"
)

// EventType identifies the type of visibility event.
type EventType string

const (
	EventTargetAcquired EventType = "target_acquired"
	EventTargetLost     EventType = "target_lost"
	EventFeedDropout    EventType = "feed_dropout"
	EventFeedRestored   EventType = "feed_restored"
)

// Event represents an automatically detected visibility transition.
type Event struct {
	Type        EventType `csv:"type"`
	Frame       int64     `csv:"frame"`
	SimTimeSec  float64   `csv:"sim_time"`
	Description string    `csv:"description"`
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	slog.Info("event",
		"type", string(e.Type),
		"frame", e.Frame,
		"sim_time", e.SimTimeSec,
		"description", e.Description,
	)
}

// Default hysteresis thresholds on the median visible fraction.
const (
	DefaultAcquireThreshold = 0.5
	DefaultReleaseThreshold = 0.2
)

// EventDetector detects visibility transitions across coverage windows.
// Acquire and release thresholds form a hysteresis band so a target
// hovering near one threshold does not flap.
type EventDetector struct {
	acquireThreshold float64
	releaseThreshold float64

	acquired bool
	feedDown bool
}

// NewEventDetector creates a detector. Non-positive thresholds get the
// defaults; release is capped below acquire.
func NewEventDetector(acquire, release float64) *EventDetector {
	if acquire <= 0 {
		acquire = DefaultAcquireThreshold
	}
	if release <= 0 {
		release = DefaultReleaseThreshold
	}
	if release >= acquire {
		release = acquire / 2
	}
	return &EventDetector{
		acquireThreshold: acquire,
		releaseThreshold: release,
	}
}

// Check analyzes the latest window and returns any triggered events.
func (d *EventDetector) Check(stats CoverageStats) []Event {
	var events []Event

	// Feed state: a window of pure dropouts means the sensor had no
	// geometry the whole time.
	if stats.Frames == 0 && stats.Dropouts > 0 {
		if !d.feedDown {
			d.feedDown = true
			events = append(events, Event{
				Type:        EventFeedDropout,
				Frame:       stats.WindowEndFrame,
				SimTimeSec:  stats.SimTimeSec,
				Description: fmt.Sprintf("No sensor geometry for %d frames", stats.Dropouts),
			})
		}
		return events
	}
	if d.feedDown && stats.Frames > 0 {
		d.feedDown = false
		events = append(events, Event{
			Type:        EventFeedRestored,
			Frame:       stats.WindowEndFrame,
			SimTimeSec:  stats.SimTimeSec,
			Description: fmt.Sprintf("Sensor geometry restored after %d dropout frames", stats.Dropouts),
		})
	}

	covered := stats.Visible + stats.NearPlane + stats.Shadowed
	frac := stats.VisibleFracP50

	if !d.acquired && covered > 0 && frac >= d.acquireThreshold {
		d.acquired = true
		events = append(events, Event{
			Type:        EventTargetAcquired,
			Frame:       stats.WindowEndFrame,
			SimTimeSec:  stats.SimTimeSec,
			Description: fmt.Sprintf("Median visible fraction %.2f above %.2f", frac, d.acquireThreshold),
		})
	} else if d.acquired && (covered == 0 || frac <= d.releaseThreshold) {
		d.acquired = false
		events = append(events, Event{
			Type:        EventTargetLost,
			Frame:       stats.WindowEndFrame,
			SimTimeSec:  stats.SimTimeSec,
			Description: fmt.Sprintf("Median visible fraction %.2f below %.2f", frac, d.releaseThreshold),
		})
	}

	return events
}

// Acquired reports whether the target is currently considered visible.
func (d *EventDetector) Acquired() bool {
	return d.acquired
}
