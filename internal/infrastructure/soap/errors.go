package soap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport wraps network failures and non-2xx replies without a fault
	ErrTransport = errors.New("soap: transport failure")
	// ErrFault is matched by every *Fault
	ErrFault = errors.New("soap: fault")
)

// Fault is a SOAP 1.1 fault returned by the provider
type Fault struct {
	Code   string       `xml:"faultcode"`
	String string       `xml:"faultstring"`
	Actor  string       `xml:"faultactor"`
	Detail *FaultDetail `xml:"detail"`
}

// FaultDetail keeps the raw detail element of a fault
type FaultDetail struct {
	Content string `xml:",innerxml"`
}

// Error implements the error interface
func (f *Fault) Error() string {
	msg := strings.TrimSpace(f.String)
	if msg == "" {
		msg = "no fault string"
	}
	if f.Code == "" {
		return fmt.Sprintf("soap fault: %s", msg)
	}
	return fmt.Sprintf("soap fault %s: %s", f.Code, msg)
}

// Is lets errors.Is(err, ErrFault) match any fault
func (f *Fault) Is(target error) bool {
	return target == ErrFault
}
