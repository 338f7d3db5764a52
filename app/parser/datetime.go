package parser

import (
	"regexp"
	"strings"
	"time"
)

// Feeds get timestamps wrong in every way imaginable: missing colons
// in offsets, misspelled or plain wrong weekday names, full month
// names, hour 24, single-digit hours, obsolete zone names, ISO 8601
// where RFC 2822 belongs. The parsers below repair the common damage
// before handing the value to time.Parse. A non-empty value that
// still fails after repair is a hard error; silently dropping it
// would hide a timestamp the document clearly meant to convey.

var (
	// "+0200" meant "+02:00"
	offsetColonRe = regexp.MustCompile(`([+-]\d{2})(\d{2})`)
	// "UTC" is not a valid RFC 2822 zone, and "-0000" means "unknown"
	utcZoneRe = regexp.MustCompile(`UTC|-0000\s*$`)
	// weekday names are decorative and frequently wrong, drop them
	weekdayRe = regexp.MustCompile(`^(Sun|Mon|Tue|Wed|Thu|Fri|Sat)[a-z]*,\s*`)
	// "September" meant "Sep"
	longMonthRe = regexp.MustCompile(`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]+`)
	// hour 24 is read as start of day rather than rejected
	hour24Re = regexp.MustCompile(` 24:`)
	// "1:27" meant "01:27"
	shortHourRe = regexp.MustCompile(` (\d):`)
	// obsolete named zones; time.Parse would fabricate a zero offset
	// for the ones it does not know
	namedZoneRe = regexp.MustCompile(`(UT|GMT|EST|EDT|CST|CDT|MST|MDT|PST|PDT)\s*$`)
)

var obsoleteZoneOffsets = map[string]string{
	"UT":  "+0000",
	"GMT": "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

var rfc2822Layouts = []string{
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04 -0700",
}

// timestampRFC3339 parses an RFC 3339 / ISO 8601 timestamp after
// repairing a colon-less zone offset. Empty input is absent, not an
// error.
func timestampRFC3339(text string) (*time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	t, err := parseRFC3339(text)
	if err != nil {
		return nil, &InvalidDateTimeError{Value: text, Err: err}
	}
	u := t.UTC()
	return &u, nil
}

// timestampRFC2822 parses the timestamp format RSS 2.0 prescribes,
// leniently. ISO 8601 values are accepted first since feeds mix the
// two up, then the usual RFC 2822 damage is repaired in sequence.
func timestampRFC2822(text string) (*time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if t, err := parseRFC3339(text); err == nil {
		u := t.UTC()
		return &u, nil
	}

	fixed := replaceFirst(utcZoneRe, text, "+0000")
	fixed = replaceFirst(weekdayRe, fixed, "")
	fixed = replaceFirst(longMonthRe, fixed, "${1}")
	fixed = replaceFirst(hour24Re, fixed, " 00:")
	fixed = replaceFirst(shortHourRe, fixed, " 0${1}:")
	fixed = normalizeZoneName(fixed)

	var lastErr error
	for _, layout := range rfc2822Layouts {
		t, err := time.Parse(layout, fixed)
		if err == nil {
			u := t.UTC()
			return &u, nil
		}
		lastErr = err
	}
	return nil, &InvalidDateTimeError{Value: text, Err: lastErr}
}

func parseRFC3339(text string) (time.Time, error) {
	fixed := replaceFirst(offsetColonRe, text, "${1}:${2}")
	return time.Parse(time.RFC3339, fixed)
}

// normalizeZoneName rewrites a trailing obsolete zone name to its
// numeric offset.
func normalizeZoneName(text string) string {
	m := namedZoneRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return namedZoneRe.ReplaceAllString(text, obsoleteZoneOffsets[m[1]])
}

// replaceFirst is ReplaceAllString limited to the first match, which
// is all the fixups above want.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + string(re.ExpandString(nil, repl, s, loc)) + s[loc[1]:]
}
