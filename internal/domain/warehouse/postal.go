package warehouse

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/erp/yellowcube/internal/domain/shared"
)

// DefaultSnippetNamespace is the namespace the shop plugin stores its
// postal code messages under
const DefaultSnippetNamespace = "engine/Shopware/Plugins/Local/Backend/AsignYellowcube"

// Snippet keys and log tags for postal code messages
const (
	SnippetZipNoMatch      = "yellowcube/zip/message/nomatch"
	SnippetZipInvalid      = "yellowcube/zip/message/invalid"
	LogTagZipNoMatch       = "NOMATCH_ZIP_ERROR"
	LogTagZipInvalid       = "INVALID_ZIP_ERROR"
	LogTagVerifyPostalCode = "verifyZipStatus"
)

// MessageCatalog resolves localized messages by namespace and key. A
// missing message is reported as shared.ErrNotFound.
type MessageCatalog interface {
	Message(ctx context.Context, namespace, key string) (string, error)
}

// ErrorLog records failures by operation tag
type ErrorLog interface {
	Log(ctx context.Context, tag, message string, isWarning bool) error
}

// postalDigits lists the countries whose postal codes are checked
var postalDigits = map[string]int{
	"CH": 4,
	"DE": 5,
}

// fallbackMessages stand in for snippets the shop does not carry
var fallbackMessages = map[string]string{
	SnippetZipNoMatch: "postal code length does not match the country",
	SnippetZipInvalid: "postal code must not contain letters",
}

// PostalGate checks postal codes before an order is sent
type PostalGate struct {
	catalog   MessageCatalog
	log       ErrorLog
	namespace string
}

// PostalGateOption configures a PostalGate
type PostalGateOption func(*PostalGate)

// WithSnippetNamespace reads messages from namespace instead of
// DefaultSnippetNamespace. Empty keeps the default.
func WithSnippetNamespace(namespace string) PostalGateOption {
	return func(g *PostalGate) {
		if namespace != "" {
			g.namespace = namespace
		}
	}
}

// NewPostalGate creates a new postal gate
func NewPostalGate(catalog MessageCatalog, log ErrorLog, opts ...PostalGateOption) *PostalGate {
	g := &PostalGate{catalog: catalog, log: log, namespace: DefaultSnippetNamespace}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Verify returns value unchanged when it is acceptable for the country.
// Countries without a rule pass unchecked.
func (g *PostalGate) Verify(ctx context.Context, value, countryCode string) (result string, failure *ValidationFailure) {
	defer func() {
		if r := recover(); r != nil {
			failure = g.internalFailure(ctx, fmt.Errorf("postal code check panicked: %v", r))
			result = ""
		}
	}()

	digits, ok := postalDigits[countryCode]
	if !ok {
		return value, nil
	}

	// byte length: a multibyte character counts as more than one digit
	if len(value) != digits {
		return "", g.fail(ctx, ZCodeLengthMismatch, SnippetZipNoMatch, LogTagZipNoMatch)
	}
	if containsLetter(value) {
		return "", g.fail(ctx, ZCodeContainsLetter, SnippetZipInvalid, LogTagZipInvalid)
	}
	return value, nil
}

func (g *PostalGate) fail(ctx context.Context, zcode int, key, tag string) *ValidationFailure {
	message, err := g.catalog.Message(ctx, g.namespace, key)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		message = ""
	case err != nil:
		return g.internalFailure(ctx, err)
	}
	if message == "" {
		message = fallbackMessages[key]
	}
	// the failure is returned even when the log write fails
	_ = g.log.Log(ctx, tag, message, true)
	return &ValidationFailure{ZCode: zcode, Message: message}
}

func (g *PostalGate) internalFailure(ctx context.Context, err error) *ValidationFailure {
	_ = g.log.Log(ctx, LogTagVerifyPostalCode, err.Error(), false)
	return &ValidationFailure{ZCode: ZCodeInternal, Message: err.Error()}
}

func containsLetter(s string) bool {
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
