package ui

import (
	"encoding/json"
	"html/template"
	"strconv"
	"strings"
	"time"

	"inequalitymap/ui/services"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": services.Markdown,
		"json": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		"sub": func(a, b int) int { return a - b },
		"joinInts": func(values []int) string {
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = strconv.Itoa(v)
			}
			return strings.Join(parts, ",")
		},
		"yearIndex": yearIndex,
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "not yet"
			}
			return t.UTC().Format("2006-01-02 15:04 MST")
		},
	}
}

// yearIndex positions the slider thumb on year, or on the closest eligible
// year below it when year is not offered
func yearIndex(years []int, year int) int {
	idx := 0
	for i, y := range years {
		if y <= year {
			idx = i
		}
	}
	return idx
}
