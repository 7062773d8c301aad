// Package soap is a minimal SOAP 1.1 client for the Yellowcube web service.
package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/logger"
	"github.com/erp/yellowcube/internal/infrastructure/telemetry"
)

const (
	envelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	contentType       = "text/xml; charset=utf-8"
	defaultTimeout    = 60 * time.Second
	maxResponseBytes  = 16 << 20
)

// Config holds the provider endpoint settings
type Config struct {
	Endpoint  string
	Namespace string
	Timeout   time.Duration
}

// Client posts SOAP envelopes to the provider endpoint
type Client struct {
	endpoint   string
	namespace  string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ fulfillment.Caller = (*Client)(nil)

// NewClient creates a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("soap: endpoint is required")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		namespace:  cfg.Namespace,
		httpClient: httpClient,
		logger:     log,
	}, nil
}

// Call sends request as the body element named operation and decodes the
// first body child of the reply into response. Faults are returned as *Fault.
func (c *Client) Call(ctx context.Context, operation string, request, response any) error {
	ctx, span := telemetry.StartSpan(ctx, "soap."+operation,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrOperation, operation),
	)
	defer span.End()

	err := c.call(ctx, span, operation, request, response)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

func (c *Client) call(ctx context.Context, span trace.Span, operation string, request, response any) error {
	log := logger.For(ctx, c.logger)

	payload, err := c.encode(operation, request)
	if err != nil {
		return fmt.Errorf("soap: failed to encode %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("soap: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("SOAPAction", `"`+operation+`"`)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrHTTPStatus, resp.StatusCode)
	log.Debug("SOAP call completed",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(body)),
	)

	if len(bytes.TrimSpace(body)) == 0 {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
		}
		return warehouse.ErrUnexpectedShape
	}

	// SOAP 1.1 faults arrive with HTTP 500, so the body is read first
	inner, fault, decodeErr := decodeBody(body)
	if fault != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrFaultCode, fault.Code)
		return fault
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("soap: failed to parse response: %w", decodeErr)
	}
	return decodeFirstChild(inner, response)
}

// encode writes the envelope by token so the operation element can carry
// the service namespace
func (c *Client) encode(operation string, request any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	envelope := xml.StartElement{
		Name: xml.Name{Local: "soapenv:Envelope"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns:soapenv"}, Value: envelopeNamespace}},
	}
	body := xml.StartElement{Name: xml.Name{Local: "soapenv:Body"}}

	if err := enc.EncodeToken(envelope); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(body); err != nil {
		return nil, err
	}
	if err := enc.EncodeElement(request, xml.StartElement{Name: xml.Name{Space: c.namespace, Local: operation}}); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(body.End()); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(envelope.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type responseEnvelope struct {
	Body struct {
		Fault *Fault `xml:"Fault"`
		Inner []byte `xml:",innerxml"`
	} `xml:"Body"`
}

func decodeBody(data []byte) ([]byte, *Fault, error) {
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, nil, err
	}
	return env.Body.Inner, env.Body.Fault, nil
}

func decodeFirstChild(inner []byte, response any) error {
	dec := xml.NewDecoder(bytes.NewReader(inner))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return warehouse.ErrUnexpectedShape
		}
		if err != nil {
			return fmt.Errorf("soap: failed to parse response body: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if err := dec.DecodeElement(response, &start); err != nil {
				return fmt.Errorf("soap: failed to decode %s: %w", start.Name.Local, err)
			}
			return nil
		}
	}
}
