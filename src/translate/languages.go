package translate

import "strings"

type Language struct {
	Name string
	Code string
}

// Languages offered in the target selector, in display order.
var Languages = []Language{
	{"English", "en"},
	{"Portuguese", "pt"},
	{"Spanish", "es"},
	{"French", "fr"},
	{"German", "de"},
	{"Italian", "it"},
	{"Japanese", "ja"},
	{"Korean", "ko"},
	{"Chinese (Simplified)", "zh-CN"},
	{"Russian", "ru"},
}

// LanguageName returns the display name for code, or code itself when unknown.
func LanguageName(code string) string {
	for _, l := range Languages {
		if strings.EqualFold(l.Code, code) {
			return l.Name
		}
	}
	return code
}

// LookupLanguage accepts a code or a display name, case-insensitively.
func LookupLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(l.Code, s) || strings.EqualFold(l.Name, s) {
			return l, true
		}
	}
	return Language{}, false
}

// Names lists display names in selector order.
func Names() []string {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = l.Name
	}
	return names
}

// sameLanguage compares codes on the primary subtag so that "zh" matches "zh-CN".
func sameLanguage(a, b string) bool {
	primary := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		if i := strings.IndexAny(s, "-_"); i >= 0 {
			s = s[:i]
		}
		return s
	}
	return a != "" && primary(a) == primary(b)
}
