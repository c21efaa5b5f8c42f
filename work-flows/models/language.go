package models

// Language is one of the UI languages the assistant supports.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguagePunjabi Language = "pa"
)

const DefaultLanguage = LanguageEnglish

func (l Language) String() string {
	return string(l)
}

// Languages lists the supported languages in display order.
func Languages() []Language {
	return []Language{LanguageEnglish, LanguageHindi, LanguagePunjabi}
}

func IsValidLanguage(code string) bool {
	switch Language(code) {
	case LanguageEnglish, LanguageHindi, LanguagePunjabi:
		return true
	default:
		return false
	}
}

// Locale returns the language-region tag used by speech engines.
func (l Language) Locale() string {
	switch l {
	case LanguageHindi:
		return "hi-IN"
	case LanguagePunjabi:
		return "pa-IN"
	default:
		return "en-US"
	}
}

// NativeLabel is the language name written in that language.
func (l Language) NativeLabel() string {
	switch l {
	case LanguageHindi:
		return "हिंदी"
	case LanguagePunjabi:
		return "ਪੰਜਾਬੀ"
	default:
		return "English"
	}
}
