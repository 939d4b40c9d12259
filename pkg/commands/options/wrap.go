package options

import "strings"

func Wrap80(text string) string {
	return Wrap(text, 80)
}

// Wrap reflows text to width, keeping blank-line paragraph breaks.
func Wrap(text string, width int) string {
	paragraphs := strings.Split(strings.TrimSpace(text), "\n\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		out = append(out, wrapParagraph(p, width))
	}
	return strings.Join(out, "\n\n")
}

func wrapParagraph(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	count := width - len(words[0])
	for _, word := range words[1:] {
		if len(word)+1 > count {
			b.WriteString("\n" + word)
			count = width - len(word)
		} else {
			b.WriteString(" " + word)
			count -= 1 + len(word)
		}
	}
	return b.String()
}
