// Package titledate recognizes date and time phrases embedded in free-text
// task titles. Parsing is a pure function of the input text and a reference
// instant; callers re-run it on every edit.
package titledate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Expression is a recognized date/time phrase within the input text.
type Expression struct {
	Start       int       `json:"start"`
	End         int       `json:"end"`
	Text        string    `json:"text"`
	Time        time.Time `json:"time"`
	CertainHour bool      `json:"certain_hour"`
}

// Extraction is the derived form state for a title: the text with all
// recognized phrases stripped, plus the due date taken from the best phrase.
type Extraction struct {
	CleanTitle string       `json:"clean_title"`
	DueDate    *time.Time   `json:"due_date,omitempty"`
	HasDueTime bool         `json:"has_due_time"`
	Spans      []Expression `json:"spans,omitempty"`
}

const (
	weekdayNames = `monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun`
	monthNames   = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`
)

var exprRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join([]string{
	`(?:next|this)\s+week`,
	`in\s+\d+\s+(?:minutes?|mins?|hours?|hrs?|days?|weeks?)`,
	`(?:on\s+|this\s+|next\s+)?(?:` + weekdayNames + `)`,
	`today|tonight|tomorrow|yesterday`,
	`(?:on\s+)?(?:` + monthNames + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?`,
	`\d{1,2}(?:st|nd|rd|th)?\s+(?:` + monthNames + `)(?:,?\s+\d{4})?`,
	`(?:at\s+)?\d{1,2}(?::\d{2})?\s*(?:am|pm)`,
	`(?:at\s+)?\d{1,2}:\d{2}`,
	`(?:at\s+)?(?:noon|midnight)`,
}, `|`) + `)\b`)

var (
	clockRe    = regexp.MustCompile(`(?i)^(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
	namedHrRe  = regexp.MustCompile(`(?i)^(?:at\s+)?(noon|midnight)$`)
	inRelRe    = regexp.MustCompile(`(?i)^in\s+(\d+)\s+(minutes?|mins?|hours?|hrs?|days?|weeks?)$`)
	weekdayRe  = regexp.MustCompile(`(?i)^(?:(on|this|next)\s+)?(` + weekdayNames + `)$`)
	monthDayRe = regexp.MustCompile(`(?i)^(?:on\s+)?(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?$`)
	dayMonthRe = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthNames + `)(?:,?\s+(\d{4}))?$`)
	gapRe      = regexp.MustCompile(`^[\s,]*$`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

var weekdayByPrefix = map[string]time.Weekday{
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	"sun": time.Sunday,
}

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

type component struct {
	start, end int
	text       string
	isClock    bool
}

// Parse returns every date/time expression found in text, in order of
// appearance. Adjacent date and clock phrases separated only by spaces or
// commas resolve as a single expression ("friday at 5pm").
func Parse(text string, ref time.Time) []Expression {
	locs := exprRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	comps := make([]component, 0, len(locs))
	for _, loc := range locs {
		m := text[loc[0]:loc[1]]
		comps = append(comps, component{
			start:   loc[0],
			end:     loc[1],
			text:    m,
			isClock: clockRe.MatchString(m) || namedHrRe.MatchString(m),
		})
	}

	var exprs []Expression
	for i := 0; i < len(comps); {
		group := comps[i : i+1]
		// merge one neighbouring clock phrase with a date phrase
		if i+1 < len(comps) &&
			comps[i].isClock != comps[i+1].isClock &&
			gapRe.MatchString(text[comps[i].end:comps[i+1].start]) {
			group = comps[i : i+2]
			i += 2
		} else {
			i++
		}
		if expr, ok := resolve(text, group, ref); ok {
			exprs = append(exprs, expr)
		}
	}
	return exprs
}

// Extract derives the clean title and due-date fields from text. The best
// expression is the first one with a certain hour, falling back to the
// earliest match; all matched spans are stripped from the title.
func Extract(text string, ref time.Time) Extraction {
	spans := Parse(text, ref)
	if len(spans) == 0 {
		return Extraction{CleanTitle: text}
	}

	best := spans[0]
	for _, s := range spans[1:] {
		if s.CertainHour && !best.CertainHour {
			best = s
		}
	}

	clean := text
	for i := len(spans) - 1; i >= 0; i-- {
		clean = clean[:spans[i].Start] + " " + clean[spans[i].End:]
	}
	clean = strings.TrimSpace(spaceRe.ReplaceAllString(clean, " "))
	clean = strings.TrimRight(clean, " ,.;:")
	if clean == "" {
		clean = strings.TrimSpace(text)
	}

	due := best.Time
	if !best.CertainHour {
		due = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	}
	return Extraction{
		CleanTitle: clean,
		DueDate:    &due,
		HasDueTime: best.CertainHour,
		Spans:      spans,
	}
}

// RelativeDayName returns "Today", "Tomorrow" or "Yesterday" when date falls
// on the matching calendar day relative to ref, and "" otherwise.
func RelativeDayName(date, ref time.Time) string {
	d := midnight(date)
	r := midnight(ref.In(date.Location()))
	switch int(d.Sub(r).Hours() / 24) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}
	return ""
}

func resolve(text string, group []component, ref time.Time) (Expression, bool) {
	var (
		day      time.Time
		haveDay  bool
		hour     int
		minute   int
		haveHour bool
		exact    time.Time
		isExact  bool
	)

	for _, c := range group {
		phrase := strings.ToLower(strings.TrimSpace(c.text))
		switch {
		case c.isClock:
			h, m, ok := parseClock(phrase)
			if !ok {
				return Expression{}, false
			}
			hour, minute, haveHour = h, m, true

		case phrase == "today":
			day, haveDay = midnight(ref), true
		case phrase == "tonight":
			day, haveDay = midnight(ref), true
			if !haveHour {
				hour, minute, haveHour = 20, 0, true
			}
		case phrase == "tomorrow":
			day, haveDay = midnight(ref).AddDate(0, 0, 1), true
		case phrase == "yesterday":
			day, haveDay = midnight(ref).AddDate(0, 0, -1), true
		case phrase == "next week" || phrase == "this week":
			offset := 7
			if strings.HasPrefix(phrase, "this") {
				offset = 0
			}
			day, haveDay = midnight(ref).AddDate(0, 0, offset), true

		case inRelRe.MatchString(phrase):
			m := inRelRe.FindStringSubmatch(phrase)
			n, _ := strconv.Atoi(m[1])
			switch m[2][0] {
			case 'm': // minutes
				exact, isExact = ref.Add(time.Duration(n)*time.Minute), true
			case 'h':
				exact, isExact = ref.Add(time.Duration(n)*time.Hour), true
			case 'd':
				day, haveDay = midnight(ref).AddDate(0, 0, n), true
			case 'w':
				day, haveDay = midnight(ref).AddDate(0, 0, n*7), true
			}

		case weekdayRe.MatchString(phrase):
			m := weekdayRe.FindStringSubmatch(phrase)
			target, ok := weekdayByPrefix[m[2][:3]]
			if !ok {
				return Expression{}, false
			}
			days := (int(target) - int(ref.Weekday()) + 7) % 7
			if strings.EqualFold(m[1], "next") && days == 0 {
				days = 7
			}
			day, haveDay = midnight(ref).AddDate(0, 0, days), true

		case monthDayRe.MatchString(phrase) || dayMonthRe.MatchString(phrase):
			d, ok := parseMonthDay(phrase, ref)
			if !ok {
				return Expression{}, false
			}
			day, haveDay = d, true

		default:
			return Expression{}, false
		}
	}

	var resolved time.Time
	switch {
	case isExact:
		resolved = exact.Truncate(time.Minute)
		haveHour = true
	case haveHour && !haveDay:
		resolved = time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
		if !resolved.After(ref) {
			resolved = resolved.AddDate(0, 0, 1)
		}
	default:
		if !haveDay {
			return Expression{}, false
		}
		resolved = time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, ref.Location())
	}

	return Expression{
		Start:       group[0].start,
		End:         group[len(group)-1].end,
		Text:        text[group[0].start:group[len(group)-1].end],
		Time:        resolved,
		CertainHour: haveHour,
	}, true
}

func parseClock(phrase string) (hour, minute int, ok bool) {
	if m := namedHrRe.FindStringSubmatch(phrase); m != nil {
		if strings.EqualFold(m[1], "noon") {
			return 12, 0, true
		}
		return 0, 0, true
	}
	m := clockRe.FindStringSubmatch(phrase)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		hour = hour%12 + 12
	case "am":
		hour = hour % 12
	case "":
		// bare hour without am/pm or minutes is too ambiguous to accept
		if m[2] == "" {
			return 0, 0, false
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func parseMonthDay(phrase string, ref time.Time) (time.Time, bool) {
	var monthStr, dayStr, yearStr string
	if m := monthDayRe.FindStringSubmatch(phrase); m != nil {
		monthStr, dayStr, yearStr = m[1], m[2], m[3]
	} else if m := dayMonthRe.FindStringSubmatch(phrase); m != nil {
		dayStr, monthStr, yearStr = m[1], m[2], m[3]
	} else {
		return time.Time{}, false
	}

	month, ok := monthByPrefix[strings.ToLower(monthStr)[:3]]
	if !ok {
		return time.Time{}, false
	}
	dayNum, _ := strconv.Atoi(dayStr)
	if dayNum < 1 || dayNum > 31 {
		return time.Time{}, false
	}

	year := ref.Year()
	explicitYear := yearStr != ""
	if explicitYear {
		year, _ = strconv.Atoi(yearStr)
	}

	d := time.Date(year, month, dayNum, 0, 0, 0, 0, ref.Location())
	if !explicitYear && d.Before(midnight(ref)) {
		d = d.AddDate(1, 0, 0)
	}
	return d, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
