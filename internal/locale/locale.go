// Package locale converts raw place attributes (price tier, weekly opening
// hours, type tags) into localized display strings.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Placeholder text shared with the renderer.
const (
	Dash           = "—"
	Unspecified    = "غير محدد"
	FamilyFriendly = "نعم (تقديري)"
	CrowdNote      = "8:00 م – 11:00 م (تقديري)"
)

// ServiceOption is a service offering derived from type tags.
type ServiceOption struct {
	Label string
	Tags  []string
}

// Formatter holds the locale data used to format place attributes.
type Formatter struct {
	// Currency is appended to every price bracket.
	Currency string
	// Brackets holds the labels for tiers 1..len(Brackets); the last one
	// also covers every higher tier.
	Brackets []string
	// AM and PM replace the ASCII day-period markers.
	AM string
	PM string
	// RangeDash replaces the ASCII hyphen between opening and closing times.
	RangeDash string
	// Weekdays are the day names starting on Monday.
	Weekdays [7]string
	// Services are tested in order; the order is the output order.
	Services []ServiceOption
}

// Arabic returns the formatter for Arabic output priced in Saudi riyals.
func Arabic() *Formatter {
	return &Formatter{
		Currency:  "ر.س",
		Brackets:  []string{"25 – 50", "50 – 75", "75 – 120", "120+"},
		AM:        "ص",
		PM:        "م",
		RangeDash: "–",
		Weekdays:  [7]string{"الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت", "الأحد"},
		Services: []ServiceOption{
			{Label: "توصيل", Tags: []string{"meal_delivery", "delivery"}},
			{Label: "سفري", Tags: []string{"meal_takeaway", "takeout", "takeaway"}},
			{Label: "جلسات داخلية", Tags: []string{"dine_in", "dinein"}},
		},
	}
}

// WithCurrency returns a copy of f pricing brackets in currency.
func (f *Formatter) WithCurrency(currency string) *Formatter {
	c := *f
	c.Currency = currency
	return &c
}

// PriceBracket returns the ordinal bracket for a price tier: 0 for absent,
// zero, or negative tiers, otherwise 1..len(Brackets) with every tier past
// the last bracket clamped to it.
func (f *Formatter) PriceBracket(level *int) int {
	if level == nil || *level <= 0 || len(f.Brackets) == 0 {
		return 0
	}
	if *level > len(f.Brackets) {
		return len(f.Brackets)
	}
	return *level
}

// PriceRange maps a price tier to a localized currency range.
func (f *Formatter) PriceRange(level *int) string {
	b := f.PriceBracket(level)
	if b == 0 {
		return Unspecified
	}
	return fmt.Sprintf("%s %s", f.Brackets[b-1], f.Currency)
}

// NormalizeTime strips the day label from a "Label: times" line and swaps
// the day-period markers and range separator for the target locale.
func (f *Formatter) NormalizeTime(raw string) string {
	s := stripLabel(raw)
	s = strings.NewReplacer(
		"AM", f.AM,
		"PM", f.PM,
		"-", f.RangeDash,
	).Replace(s)
	return strings.TrimSpace(s)
}

// stripLabel drops everything up to the first ": ". Times such as "9:00"
// never carry a space after the colon, so they are left alone.
func stripLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, ": "); i >= 0 {
		return s[i+2:]
	}
	if strings.HasSuffix(s, ":") {
		return ""
	}
	return s
}

// WeekdayIndex returns the Monday-based index of t's weekday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// TodayHours picks the line for now's weekday from a Monday-first list of
// weekday descriptions and builds the labelled full-week list. An index past
// the end of a short list falls back to the first line.
func (f *Formatter) TodayHours(descriptions []string, now time.Time) (string, []string) {
	if len(descriptions) == 0 {
		return Dash, []string{}
	}

	idx := WeekdayIndex(now)
	if idx >= len(descriptions) {
		idx = 0
	}
	today := f.NormalizeTime(descriptions[idx])
	if today == "" {
		today = Dash
	}

	n := min(len(descriptions), len(f.Weekdays))
	full := make([]string, 0, n)
	for i := 0; i < n; i++ {
		full = append(full, fmt.Sprintf("%s: %s", f.Weekdays[i], f.NormalizeTime(descriptions[i])))
	}
	return today, full
}

// ServiceOptions returns the labels of every service whose backing tag
// appears in tags, compared case-insensitively.
func (f *Formatter) ServiceOptions(tags []string) []string {
	fold := cases.Fold()
	present := make(map[string]bool, len(tags))
	for _, t := range tags {
		present[fold.String(strings.TrimSpace(t))] = true
	}

	out := []string{}
	for _, svc := range f.Services {
		for _, tag := range svc.Tags {
			if present[fold.String(tag)] {
				out = append(out, svc.Label)
				break
			}
		}
	}
	return out
}
