package usecase

import (
	"strings"
)

const maxSuggestions = 5

var commonSearches = []string{
	"โน้ตบุ๊คสำหรับเกม",
	"โน้ตบุ๊คทำงาน",
	"คอมพิวเตอร์ประกอบ",
	"การ์ดจอ RTX",
	"เมาส์เกมมิ่ง",
	"คีย์บอร์ดไฟ",
	"หูฟังเกม",
	"จอมอนิเตอร์ 4K",
	"SSD 1TB",
	"RAM 16GB",
}

// suggestedCategories get an "<label> แนะนำ" entry when the partial query is
// part of the label
var suggestedCategories = []string{"NOTEBOOK", "DESKTOP", "MONITOR", "KEYBOARD", "MOUSE"}

// Suggest completes a partially typed query. Common searches containing the
// partial text come first, then matching category entries, at most five in
// total. An empty partial query matches everything.
func Suggest(partial string) []string {
	needle := strings.ToLower(strings.TrimSpace(partial))
	suggestions := make([]string, 0, maxSuggestions)

	for _, s := range commonSearches {
		if strings.Contains(strings.ToLower(s), needle) {
			suggestions = append(suggestions, s)
		}
	}
	for _, label := range suggestedCategories {
		if strings.Contains(strings.ToLower(label), needle) {
			suggestions = append(suggestions, label+" แนะนำ")
		}
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
