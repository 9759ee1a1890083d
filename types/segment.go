package types

import "time"

// Segment is the timeframe/granularity of a candle series.
type Segment string

const (
	OneMinute      Segment = "1"
	ThreeMinutes   Segment = "3"
	FiveMinutes    Segment = "5"
	FifteenMinutes Segment = "15"
	ThirtyMinutes  Segment = "30"
	Hour           Segment = "60"
	FourHours      Segment = "240"
	Day            Segment = "D"
	Week           Segment = "W"
)

var SegmentToDuration = map[Segment]time.Duration{
	OneMinute:      time.Minute,
	ThreeMinutes:   time.Minute * 3,
	FiveMinutes:    time.Minute * 5,
	FifteenMinutes: time.Minute * 15,
	ThirtyMinutes:  time.Minute * 30,
	Hour:           time.Hour,
	FourHours:      time.Hour * 4,
	Day:            time.Hour * 24,
	Week:           time.Hour * 24 * 7,
}

// ParseSegment converts the wire representation to a Segment.
func ParseSegment(s string) (Segment, bool) {
	seg := Segment(s)
	_, ok := SegmentToDuration[seg]
	return seg, ok
}
