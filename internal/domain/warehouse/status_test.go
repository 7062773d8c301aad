package warehouse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		statusType StatusType
		statusCode StatusCode
		kind       OperationKind
		expected   StatusOutcome
	}{
		// article master data / generic status table
		{"article accepted", StatusTypeSuccess, 100, OperationArticle, OutcomeAccepted},
		{"article pending", StatusTypeSuccess, 10, OperationArticle, OutcomePending},
		{"article other code", StatusTypeSuccess, 101, OperationArticle, OutcomeNotAccepted},
		{"article error type", StatusTypeError, 100, OperationArticle, OutcomeNotAccepted},
		{"generic status accepted", StatusTypeSuccess, 100, OperationGenericStatus, OutcomeAccepted},
		{"generic status pending", StatusTypeSuccess, 10, OperationGenericStatus, OutcomePending},

		// order creation table: only code 10 accepts
		{"order creation code 10 accepted", StatusTypeSuccess, 10, OperationOrderCreation, OutcomeAccepted},
		{"order creation code 100 not accepted", StatusTypeSuccess, 100, OperationOrderCreation, OutcomeNotAccepted},
		{"order creation error", StatusTypeError, 10, OperationOrderCreation, OutcomeNotAccepted},

		// order reply table: only code 100 accepts
		{"order reply code 100 accepted", StatusTypeSuccess, 100, OperationOrderReply, OutcomeAccepted},
		{"order reply code 10 not accepted", StatusTypeSuccess, 10, OperationOrderReply, OutcomeNotAccepted},

		{"empty pair", "", 0, OperationArticle, OutcomeNotAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.statusType, tt.statusCode, tt.kind))
		})
	}
}

func TestAcceptanceFlag(t *testing.T) {
	assert.Equal(t, 1, AcceptanceFlag(OutcomeAccepted))
	assert.Equal(t, 2, AcceptanceFlag(OutcomePending))
	assert.Equal(t, 0, AcceptanceFlag(OutcomeNotAccepted))
}

func TestStatusCode_Decoding(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected StatusCode
	}{
		{"number", `{"StatusType":"S","StatusCode":100}`, StatusCodeAccepted},
		{"string", `{"StatusType":"S","StatusCode":"100"}`, StatusCodeAccepted},
		{"padded string", `{"StatusType":"S","StatusCode":" 10 "}`, StatusCodePending},
		{"null", `{"StatusType":"S","StatusCode":null}`, StatusCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp GenericResponse
			require.NoError(t, json.Unmarshal([]byte(tt.json), &resp))
			assert.Equal(t, tt.expected, resp.StatusCode)
			assert.Equal(t, StatusTypeSuccess, resp.StatusType)
		})
	}

	t.Run("non numeric", func(t *testing.T) {
		var resp GenericResponse
		assert.Error(t, json.Unmarshal([]byte(`{"StatusCode":"abc"}`), &resp))
	})
}

func TestMessageType_StatusOperation(t *testing.T) {
	op, kind, err := MessageArticle.StatusOperation()
	require.NoError(t, err)
	assert.Equal(t, OpGetArticleStatus, op)
	assert.Equal(t, OperationGenericStatus, kind)

	op, kind, err = MessageOrder.StatusOperation()
	require.NoError(t, err)
	assert.Equal(t, OpGetOrderStatus, op)
	assert.Equal(t, OperationGenericStatus, kind)

	op, kind, err = MessageOrderReply.StatusOperation()
	require.NoError(t, err)
	assert.Equal(t, OpGetOrderReply, op)
	assert.Equal(t, OperationOrderReply, kind)

	_, _, err = MessageInventory.StatusOperation()
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}
