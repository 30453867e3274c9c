package calendar

import "time"

// DayCell is one cell of the month grid: the events of a calendar day
// truncated to a display limit, with an overflow count for the "+N more"
// indicator. Month cells have no positional math.
type DayCell struct {
	Date     time.Time `json:"date"`
	InMonth  bool      `json:"in_month"`
	Events   []Event   `json:"events"`
	Overflow int       `json:"overflow"`
}

// DefaultMaxPerCell is the display truncation limit for month cells.
const DefaultMaxPerCell = 3

// MonthCells buckets events by calendar day over the padded month grid of
// ref. The returned slice always covers full weeks, Sunday through
// Saturday; days outside the calendar month are marked InMonth=false.
func MonthCells(ref time.Time, events []Event, maxPerCell int) []DayCell {
	if maxPerCell <= 0 {
		maxPerCell = DefaultMaxPerCell
	}
	gridStart, gridEnd := GridWindow(ref)
	monthStart, monthEnd := Window(ModeMonth, ref)

	byDay := make(map[string][]Event)
	for _, e := range events {
		key := e.Start.In(ref.Location()).Format("2006-01-02")
		byDay[key] = append(byDay[key], e)
	}

	var cells []DayCell
	for day := gridStart; day.Before(gridEnd); day = day.AddDate(0, 0, 1) {
		dayEvents := byDay[day.Format("2006-01-02")]
		cell := DayCell{
			Date:    day,
			InMonth: !day.Before(monthStart) && day.Before(monthEnd),
		}
		if len(dayEvents) > maxPerCell {
			cell.Events = dayEvents[:maxPerCell]
			cell.Overflow = len(dayEvents) - maxPerCell
		} else {
			cell.Events = dayEvents
		}
		cells = append(cells, cell)
	}
	return cells
}
