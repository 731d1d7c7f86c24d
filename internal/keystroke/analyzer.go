package keystroke

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Metrics is the fixed set of behavioral statistics derived from one
// analysis window of events. Rates are clamped: ErrorRate to [0,1],
// WPM floored at 0. With fewer than two events WPM and ErrorRate are 0.
type Metrics struct {
	TotalKeys      int            `json:"total_keys"`
	TypingKeys     int            `json:"typing_keys"`
	Backspaces     int            `json:"backspaces"`
	SpecialKeys    int            `json:"special_keys"`
	AverageGapMs   float64        `json:"average_gap_ms"`
	LongPauses     int            `json:"long_pauses"`
	RapidBursts    int            `json:"rapid_bursts"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	WPM            int            `json:"wpm"`
	ErrorRate      float64        `json:"error_rate"`
	MostUsedKeys   []KeyFrequency `json:"most_used_keys"`
}

// KeyFrequency is one entry of the most-used-character table.
type KeyFrequency struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// AnalyzerOptions tunes the analysis thresholds. Zero values fall back to
// the defaults below.
type AnalyzerOptions struct {
	Window         time.Duration // trailing window of events considered
	PauseThreshold time.Duration // gap counted as a long pause
	BurstThreshold time.Duration // gap counted as a rapid burst
	MaxGap         time.Duration // deltas above this are discarded as idle
	TopKeys        int           // size of the frequency table
}

const (
	defaultWindow         = 45 * time.Second
	defaultPauseThreshold = 2 * time.Second
	defaultBurstThreshold = 100 * time.Millisecond
	defaultMaxGap         = 10 * time.Second
	defaultTopKeys        = 5
)

func (o AnalyzerOptions) withDefaults() AnalyzerOptions {
	if o.Window <= 0 {
		o.Window = defaultWindow
	}
	if o.PauseThreshold <= 0 {
		o.PauseThreshold = defaultPauseThreshold
	}
	if o.BurstThreshold <= 0 {
		o.BurstThreshold = defaultBurstThreshold
	}
	if o.MaxGap <= 0 {
		o.MaxGap = defaultMaxGap
	}
	if o.TopKeys <= 0 {
		o.TopKeys = defaultTopKeys
	}
	return o
}

// Analyze reduces an ordered event sequence into Metrics. The input is never
// mutated; empty input yields all-zero metrics.
func Analyze(events []Event, opts AnalyzerOptions) Metrics {
	opts = opts.withDefaults()

	events = trailingWindow(events, opts.Window)

	var m Metrics
	m.TotalKeys = len(events)
	if len(events) == 0 {
		return m
	}

	freq := make(map[string]int)
	for _, e := range events {
		switch {
		case e.IsTypingKey():
			m.TypingKeys++
			freq[strings.ToLower(e.Key)]++
		case e.IsBackspace():
			m.Backspaces++
		case e.IsSpecialKey():
			m.SpecialKeys++
		}
	}

	// successive deltas, dropping idle gaps and non-positive values
	var gaps []float64
	for i := 1; i < len(events); i++ {
		delta := float64(events[i].Timestamp - events[i-1].Timestamp)
		if delta <= 0 || delta >= float64(opts.MaxGap.Milliseconds()) {
			continue
		}
		gaps = append(gaps, delta)
	}

	if len(gaps) > 0 {
		var sum float64
		for _, g := range gaps {
			sum += g
			if g > float64(opts.PauseThreshold.Milliseconds()) {
				m.LongPauses++
			}
			if g < float64(opts.BurstThreshold.Milliseconds()) {
				m.RapidBursts++
			}
		}
		m.AverageGapMs = sum / float64(len(gaps))
	}

	if len(events) >= 2 {
		m.ElapsedSeconds = float64(events[len(events)-1].Timestamp-events[0].Timestamp) / 1000
		if m.ElapsedSeconds <= 0 {
			m.ElapsedSeconds = opts.Window.Seconds()
		}
		minutes := m.ElapsedSeconds / 60
		if minutes > 0 {
			wpm := int(math.Round(float64(m.TypingKeys) / 5 / minutes))
			if wpm > 0 {
				m.WPM = wpm
			}
		}
		if m.TypingKeys > 0 {
			m.ErrorRate = float64(m.Backspaces) / float64(m.TypingKeys)
			if m.ErrorRate > 1 {
				m.ErrorRate = 1
			}
		}
	}

	m.MostUsedKeys = topKeys(freq, opts.TopKeys)

	return m
}

// trailingWindow keeps only events within the window ending at the last event.
func trailingWindow(events []Event, window time.Duration) []Event {
	if len(events) < 2 {
		return events
	}
	cutoff := events[len(events)-1].Timestamp - window.Milliseconds()
	for i, e := range events {
		if e.Timestamp >= cutoff {
			return events[i:]
		}
	}
	return events
}

func topKeys(freq map[string]int, n int) []KeyFrequency {
	if len(freq) == 0 {
		return nil
	}
	out := make([]KeyFrequency, 0, len(freq))
	for k, c := range freq {
		out = append(out, KeyFrequency{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
