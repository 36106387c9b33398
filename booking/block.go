package booking

import (
	"fmt"
	"time"
)

// TimeOfDay is a clock position expressed as whole minutes since midnight.
// All interval arithmetic in this package happens on elapsed minutes so that
// comparisons never touch calendar days.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute pair.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses a "15:04" clock string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("booking: invalid time of day %q: %w", value, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

// Add returns the position the given number of minutes later.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// String formats the position as "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Duration is a requested booking length, independent of start position.
type Duration struct {
	Minutes int
	Label   string
}

// NewDuration validates and builds a bookable duration.
func NewDuration(minutes int, label string) (Duration, error) {
	if minutes <= 0 {
		vErr := &ValidationError{}
		vErr.add("minutes", "duration must be positive")
		return Duration{}, vErr
	}
	return Duration{Minutes: minutes, Label: label}, nil
}

// Block is one discrete bookable time unit within the operating window.
// Index is the block's ordinal position in the day's table.
type Block struct {
	Index int
	Start TimeOfDay
	End   TimeOfDay
}

// TimeRange yields the boundary points between start and end, step minutes
// apart, inclusive of both ends.
func TimeRange(start, end TimeOfDay, stepMinutes int) []TimeOfDay {
	if stepMinutes <= 0 || end < start {
		return nil
	}
	points := make([]TimeOfDay, 0, int(end-start)/stepMinutes+1)
	for t := start; t <= end; t = t.Add(stepMinutes) {
		points = append(points, t)
	}
	return points
}

// CreateBlocks pairs consecutive boundary points into blocks. The final
// boundary closes the last block without starting one of its own; when end
// equals start there are no blocks at all.
func CreateBlocks(start, end TimeOfDay, stepMinutes int) []Block {
	points := TimeRange(start, end, stepMinutes)
	if len(points) < 2 {
		return nil
	}
	blocks := make([]Block, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		blocks = append(blocks, Block{Index: i, Start: points[i], End: points[i+1]})
	}
	return blocks
}
