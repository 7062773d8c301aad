package warehouse

import (
	"fmt"
	"strings"
)

// Language is one of the languages the provider accepts
type Language string

const (
	LanguageGerman  Language = "de"
	LanguageFrench  Language = "fr"
	LanguageItalian Language = "it"
	LanguageEnglish Language = "en"
)

// IsValid returns true if the provider accepts the language
func (l Language) IsValid() bool {
	switch l {
	case LanguageGerman, LanguageFrench, LanguageItalian, LanguageEnglish:
		return true
	default:
		return false
	}
}

// SalutationCode is the coarse salutation stored on the customer
type SalutationCode string

const (
	SalutationMr      SalutationCode = "MR"
	SalutationMs      SalutationCode = "MS"
	SalutationMrs     SalutationCode = "MRS"
	SalutationCompany SalutationCode = "COMPANY"
)

// ParseSalutationCode normalizes a stored salutation (e.g. "mr") into a code
func ParseSalutationCode(s string) SalutationCode {
	return SalutationCode(strings.ToUpper(strings.TrimSpace(s)))
}

var salutations = map[Language]map[SalutationCode]string{
	LanguageGerman: {
		SalutationMr: "Herr", SalutationMs: "Frau", SalutationMrs: "Frau", SalutationCompany: "Firma",
	},
	LanguageEnglish: {
		SalutationMr: "Mr.", SalutationMs: "Frau", SalutationMrs: "Ms.", SalutationCompany: "Company",
	},
	LanguageItalian: {
		SalutationMr: "Signore", SalutationMs: "Frau", SalutationMrs: "Signora", SalutationCompany: "Ditta",
	},
	LanguageFrench: {
		SalutationMr: "Monsieur", SalutationMs: "Frau", SalutationMrs: "Madame", SalutationCompany: "Société",
	},
}

// Salutation returns the localized title for the code in the given language.
func Salutation(lang Language, code SalutationCode) (string, error) {
	table, ok := salutations[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, string(lang))
	}
	title, ok := table[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSalutationCode, string(code))
	}
	return title, nil
}
