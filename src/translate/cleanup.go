package translate

import (
	"regexp"
	"strings"
)

// stripFences removes markdown code fences, including a language tag on the
// opening fence.
func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.ReplaceAll(strings.Join(out, "\n"), "```", ""))
}

// stripIntro drops a leading "Here's the translation:" style preamble when
// the reply contains chat lines ("[Team] Name: message").
func stripIntro(s string) string {
	lower := strings.ToLower(s)
	if !strings.Contains(lower, "here's") && !strings.Contains(lower, "here is") && !strings.Contains(lower, "translation") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.Contains(line, "[") && strings.Contains(line, "]") {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}
	return s
}

// CleanResponse removes code fences and introductory prose from model output.
func CleanResponse(s string) string {
	return stripIntro(stripFences(s))
}

var portugueseSlang = regexp.MustCompile(`(?i)\b(vc|voce|mt|mto|muito|tmb|tb|tambem|mano|blz|beleza|flw|falou|qq|qualquer|pvp|pve|cls|classe|bg|boa game|cmd|comendo|fds|fim de semana)\b`)

// LikelyPortuguese reports whether text uses common Brazilian gaming
// abbreviations, which generic detectors tend to misread.
func LikelyPortuguese(text string) bool {
	return portugueseSlang.MatchString(text)
}
