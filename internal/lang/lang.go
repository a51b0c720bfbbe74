// Package lang carries the run-wide language selection. It is plumbed
// explicitly into every component that formats a prompt or a tool
// description; there is no process-global language state.
package lang

import (
	"fmt"
	"time"
)

// Language selects the localization of prompts and tool descriptions.
type Language string

const (
	Chinese Language = "chinese"
	English Language = "english"
)

// Parse validates a language name from config or CLI input.
func Parse(s string) (Language, error) {
	switch s {
	case "zh", "chinese":
		return Chinese, nil
	case "en", "english":
		return English, nil
	}
	return "", fmt.Errorf("unknown language %q (want zh/chinese or en/english)", s)
}

var englishWeekdays = map[time.Weekday]string{
	time.Monday:    "Monday",
	time.Tuesday:   "Tuesday",
	time.Wednesday: "Wednesday",
	time.Thursday:  "Thursday",
	time.Friday:    "Friday",
	time.Saturday:  "Saturday",
	time.Sunday:    "Sunday",
}

var chineseWeekdays = map[time.Weekday]string{
	time.Monday:    "一",
	time.Tuesday:   "二",
	time.Wednesday: "三",
	time.Thursday:  "四",
	time.Friday:    "五",
	time.Saturday:  "六",
	time.Sunday:    "日",
}

// Weekday returns the localized weekday name for a "2006-01-02 15:04:05"
// timestamp.
func Weekday(datetime string, language Language) (string, error) {
	t, err := time.Parse("2006-01-02 15:04:05", datetime)
	if err != nil {
		return "", fmt.Errorf("parse time %q: %w", datetime, err)
	}
	if language == English {
		return englishWeekdays[t.Weekday()], nil
	}
	return "星期" + chineseWeekdays[t.Weekday()], nil
}
