package warehouse

import (
	"fmt"
	"strconv"
	"time"
)

// MessageType is the type discriminator of a ControlReference
type MessageType string

const (
	MessageArticle    MessageType = "ART"
	MessageOrder      MessageType = "WAB"
	MessageInventory  MessageType = "BAR"
	MessageOrderReply MessageType = "WAR"
)

// IsValid returns true if the message type is known
func (m MessageType) IsValid() bool {
	switch m {
	case MessageArticle, MessageOrder, MessageInventory, MessageOrderReply:
		return true
	default:
		return false
	}
}

// String returns the string representation of MessageType
func (m MessageType) String() string {
	return string(m)
}

// ParseMessageType decodes a message type given on the command line or in
// a stored row
func ParseMessageType(s string) (MessageType, error) {
	m := MessageType(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMessageType, s)
	}
	return m, nil
}

// StatusOperation returns the SOAP operation that queries the status of a
// previously sent message, and the classification table for its reply.
func (m MessageType) StatusOperation() (string, OperationKind, error) {
	switch m {
	case MessageArticle:
		return OpGetArticleStatus, OperationGenericStatus, nil
	case MessageOrder:
		return OpGetOrderStatus, OperationGenericStatus, nil
	case MessageOrderReply:
		return OpGetOrderReply, OperationOrderReply, nil
	default:
		return "", "", fmt.Errorf("%w: no status query for %q", ErrUnknownMessageType, string(m))
	}
}

// SOAP operation names
const (
	OpGetInventory        = "GetInventory"
	OpInsertArticle       = "InsertArticleMasterData"
	OpGetArticleStatus    = "GetInsertArticleMasterDataStatus"
	OpCreateCustomerOrder = "CreateYCCustomerOrder"
	OpGetOrderStatus      = "GetYCCustomerOrderStatus"
	OpGetOrderReply       = "GetYCCustomerOrderReply"
)

// ControlReference is the envelope header carried by every request
type ControlReference struct {
	Type          MessageType `xml:"Type" json:"Type" validate:"required"`
	Sender        string      `xml:"Sender" json:"Sender" validate:"required"`
	Receiver      string      `xml:"Receiver" json:"Receiver" validate:"required"`
	Timestamp     int64       `xml:"Timestamp" json:"Timestamp"`
	OperatingMode string      `xml:"OperatingMode" json:"OperatingMode"`
	Version       string      `xml:"Version" json:"Version"`
	TransMaxWait  int         `xml:"TransMaxWait,omitempty" json:"TransMaxWait,omitempty"`
}

// Timestamp formats t as the numeric YYYYMMDDhhmmss value the provider expects
func Timestamp(t time.Time) int64 {
	n, _ := strconv.ParseInt(t.Format("20060102150405"), 10, 64)
	return n
}
