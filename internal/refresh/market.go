package refresh

import "time"

// US equity session boundaries in minutes from midnight, exchange time.
const (
	premarketOpen = 4 * 60
	regularOpen   = 9*60 + 30
	regularClose  = 16 * 60
	afterhoursEnd = 20 * 60
)

// marketStatus labels the exchange session for a point in time.
func marketStatus(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}

	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return "closed"
	}

	minutes := t.Hour()*60 + t.Minute()
	switch {
	case minutes >= premarketOpen && minutes < regularOpen:
		return "premarket"
	case minutes >= regularOpen && minutes < regularClose:
		return "open"
	case minutes >= regularClose && minutes < afterhoursEnd:
		return "afterhours"
	default:
		return "closed"
	}
}
