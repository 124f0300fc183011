package model

import "strings"

// Category is the closed classification taxonomy. Wire values are the exact
// lowercase strings.
type Category string

const (
	CategoryInterested    Category = "interested"
	CategoryMeetingBooked Category = "meeting_booked"
	CategoryNotInterested Category = "not_interested"
	CategorySpam          Category = "spam"
	CategoryOutOfOffice   Category = "out_of_office"
	CategoryUncategorized Category = "uncategorized"
)

var categories = map[Category]struct{}{
	CategoryInterested:    {},
	CategoryMeetingBooked: {},
	CategoryNotInterested: {},
	CategorySpam:          {},
	CategoryOutOfOffice:   {},
	CategoryUncategorized: {},
}

// ParseCategory normalizes a classifier reply into the taxonomy.
// ok is false when the reply is not one of the six labels; callers decide
// whether to coerce to uncategorized or surface the violation.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, found := categories[c]; found {
		return c, true
	}
	return CategoryUncategorized, false
}

func (c Category) Valid() bool {
	_, found := categories[c]
	return found
}

func (c Category) String() string {
	return string(c)
}
