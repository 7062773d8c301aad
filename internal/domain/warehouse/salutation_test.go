package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalutation(t *testing.T) {
	tests := []struct {
		lang     Language
		code     SalutationCode
		expected string
	}{
		{LanguageGerman, SalutationMr, "Herr"},
		{LanguageGerman, SalutationMrs, "Frau"},
		{LanguageGerman, SalutationCompany, "Firma"},
		{LanguageEnglish, SalutationMr, "Mr."},
		{LanguageEnglish, SalutationMs, "Frau"},
		{LanguageEnglish, SalutationMrs, "Ms."},
		{LanguageItalian, SalutationMrs, "Signora"},
		{LanguageItalian, SalutationCompany, "Ditta"},
		{LanguageFrench, SalutationMr, "Monsieur"},
		{LanguageFrench, SalutationCompany, "Société"},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang)+"_"+string(tt.code), func(t *testing.T) {
			got, err := Salutation(tt.lang, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSalutation_Errors(t *testing.T) {
	_, err := Salutation(LanguageGerman, SalutationCode("DR"))
	assert.ErrorIs(t, err, ErrUnknownSalutationCode)

	_, err = Salutation(Language("es"), SalutationMr)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestParseSalutationCode(t *testing.T) {
	assert.Equal(t, SalutationMrs, ParseSalutationCode(" mrs "))
	assert.Equal(t, SalutationCompany, ParseSalutationCode("company"))
}
