package warehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/yellowcube/internal/domain/shared"
)

type fakeCatalog struct {
	messages map[string]string
	err      error
}

func (c *fakeCatalog) Message(_ context.Context, namespace, key string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	msg, ok := c.messages[namespace+"|"+key]
	if !ok {
		return "", shared.NewNotFoundError("snippet", namespace+"/"+key)
	}
	return msg, nil
}

type logEntry struct {
	tag       string
	message   string
	isWarning bool
}

type fakeErrorLog struct {
	entries []logEntry
}

func (l *fakeErrorLog) Log(_ context.Context, tag, message string, isWarning bool) error {
	l.entries = append(l.entries, logEntry{tag, message, isWarning})
	return nil
}

func newTestCatalog() *fakeCatalog {
	return &fakeCatalog{messages: map[string]string{
		DefaultSnippetNamespace + "|" + SnippetZipNoMatch: "Postal code has the wrong length",
		DefaultSnippetNamespace + "|" + SnippetZipInvalid: "Postal code must not contain letters",
	}}
}

func TestPostalGate_Verify(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		country   string
		wantValue string
		wantZCode int
		wantTag   string
	}{
		{"swiss code passes", "1234", "CH", "1234", 0, ""},
		{"german code passes", "10115", "DE", "10115", 0, ""},
		{"swiss code too short", "123", "CH", "", ZCodeLengthMismatch, LogTagZipNoMatch},
		{"german code too long", "101155", "DE", "", ZCodeLengthMismatch, LogTagZipNoMatch},
		{"swiss code with letter", "12a3", "CH", "", ZCodeContainsLetter, LogTagZipInvalid},
		{"multibyte character counts by bytes", "12é4", "CH", "", ZCodeLengthMismatch, LogTagZipNoMatch},
		{"unchecked country passes anything", "SW1A 1AA", "GB", "SW1A 1AA", 0, ""},
		{"unchecked country passes empty", "", "AT", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &fakeErrorLog{}
			gate := NewPostalGate(newTestCatalog(), log)

			got, failure := gate.Verify(context.Background(), tt.value, tt.country)

			if tt.wantZCode == 0 {
				assert.Nil(t, failure)
				assert.Equal(t, tt.wantValue, got)
				assert.Empty(t, log.entries)
				return
			}
			require.NotNil(t, failure)
			assert.Equal(t, tt.wantZCode, failure.ZCode)
			assert.NotEmpty(t, failure.Message)
			require.Len(t, log.entries, 1)
			assert.Equal(t, tt.wantTag, log.entries[0].tag)
			assert.Equal(t, failure.Message, log.entries[0].message)
			assert.True(t, log.entries[0].isWarning)
		})
	}
}

func TestPostalGate_LengthCheckedBeforeLetters(t *testing.T) {
	gate := NewPostalGate(newTestCatalog(), &fakeErrorLog{})

	_, failure := gate.Verify(context.Background(), "12a", "CH")
	require.NotNil(t, failure)
	assert.Equal(t, ZCodeLengthMismatch, failure.ZCode)
}

func TestPostalGate_MissingSnippetKeepsCode(t *testing.T) {
	tests := []struct {
		value     string
		wantZCode int
		wantMsg   string
	}{
		{"123", ZCodeLengthMismatch, fallbackMessages[SnippetZipNoMatch]},
		{"12a3", ZCodeContainsLetter, fallbackMessages[SnippetZipInvalid]},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			log := &fakeErrorLog{}
			gate := NewPostalGate(&fakeCatalog{messages: map[string]string{}}, log)

			_, failure := gate.Verify(context.Background(), tt.value, "CH")

			require.NotNil(t, failure)
			assert.Equal(t, tt.wantZCode, failure.ZCode)
			assert.Equal(t, tt.wantMsg, failure.Message)
			require.Len(t, log.entries, 1)
			assert.True(t, log.entries[0].isWarning)
		})
	}
}

func TestPostalGate_SnippetNamespace(t *testing.T) {
	catalog := &fakeCatalog{messages: map[string]string{
		"custom|" + SnippetZipNoMatch: "PLZ hat die falsche Länge",
	}}
	gate := NewPostalGate(catalog, &fakeErrorLog{}, WithSnippetNamespace("custom"))

	_, failure := gate.Verify(context.Background(), "123", "CH")

	require.NotNil(t, failure)
	assert.Equal(t, ZCodeLengthMismatch, failure.ZCode)
	assert.Equal(t, "PLZ hat die falsche Länge", failure.Message)
}

func TestPostalGate_InternalError(t *testing.T) {
	log := &fakeErrorLog{}
	gate := NewPostalGate(&fakeCatalog{err: errors.New("snippet store unavailable")}, log)

	_, failure := gate.Verify(context.Background(), "123", "CH")

	require.NotNil(t, failure)
	assert.Equal(t, ZCodeInternal, failure.ZCode)
	assert.Equal(t, "snippet store unavailable", failure.Message)
	require.Len(t, log.entries, 1)
	assert.Equal(t, LogTagVerifyPostalCode, log.entries[0].tag)
	assert.False(t, log.entries[0].isWarning)
}

func TestValidationFailure_Error(t *testing.T) {
	f := &ValidationFailure{ZCode: -3, Message: "letters"}
	assert.Equal(t, "validation failed (-3): letters", f.Error())

	env := Failed[*GenericResponse](OperationOrderCreation, f)
	assert.False(t, env.Success)
	assert.Equal(t, -3, env.ZCode)
	assert.Equal(t, "letters", env.Message)
}
