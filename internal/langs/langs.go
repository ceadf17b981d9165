package langs

import "strings"

// Language is a translation target the backend can voice.
type Language struct {
	Code string
	Name string
}

// Supported is the backend's target-language list, in keyboard order.
var Supported = []Language{
	{Code: "ru", Name: "Русский"},
	{Code: "en", Name: "English"},
	{Code: "kk", Name: "Қазақша"},
}

func Exists(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range Supported {
		if l.Code == code {
			return true
		}
	}
	return false
}

func Name(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range Supported {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
