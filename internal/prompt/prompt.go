// Package prompt holds the instructions the showcased apps were generated from.
package prompt

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var text string

// Title is shown above the prompt
const Title = "Creation Prompt"

// Markdown returns the prompt as a markdown document
func Markdown() string {
	return text
}

// Plain returns the prompt with markdown heading markers removed
func Plain() string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "#") {
			lines[i] = strings.TrimLeft(l, "# ")
		}
	}
	return strings.Join(lines, "\n")
}
