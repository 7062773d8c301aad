package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/yellowcube/internal/domain/warehouse"
)

const testNamespace = "urn:yellowcube:test"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Endpoint: srv.URL, Namespace: testNamespace, Timeout: 5 * time.Second}, nil, zap.NewNop())
	require.NoError(t, err)
	return c
}

func soapReply(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body>` +
		body +
		`</soapenv:Body></soapenv:Envelope>`
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{Endpoint: "  "}, nil, nil)
	assert.Error(t, err)
}

func TestClient_Call_EncodesEnvelope(t *testing.T) {
	var (
		gotBody   string
		gotAction string
		gotType   string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotAction = r.Header.Get("SOAPAction")
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(soapReply(`<ns1:GEN_Response xmlns:ns1="urn:x"><StatusType>S</StatusType><StatusCode>100</StatusCode><Reference>123456</Reference></ns1:GEN_Response>`)))
	})

	req := &warehouse.StatusRequest{
		ControlReference: warehouse.ControlReference{Type: warehouse.MessageArticle, Sender: "YCTest", Receiver: "YELLOWCUBE"},
		Reference:        "987",
	}
	var resp warehouse.GenericResponse
	err := c.Call(context.Background(), warehouse.OpGetArticleStatus, req, &resp)
	require.NoError(t, err)

	assert.Equal(t, `"GetInsertArticleMasterDataStatus"`, gotAction)
	assert.Equal(t, contentType, gotType)
	assert.Contains(t, gotBody, `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">`)
	assert.Contains(t, gotBody, `<GetInsertArticleMasterDataStatus xmlns="urn:yellowcube:test">`)
	assert.Contains(t, gotBody, `<ControlReference><Type>ART</Type><Sender>YCTest</Sender>`)
	assert.Contains(t, gotBody, `<Reference>987</Reference>`)
	assert.NotContains(t, gotBody, `<CustomerOrderNo>`)

	assert.Equal(t, warehouse.StatusTypeSuccess, resp.StatusType)
	assert.Equal(t, warehouse.StatusCodeAccepted, resp.StatusCode)
	assert.Equal(t, "123456", resp.Reference)
}

func TestClient_Call_EnvelopeIsWellFormed(t *testing.T) {
	c, err := NewClient(Config{Endpoint: "http://unused", Namespace: testNamespace}, nil, nil)
	require.NoError(t, err)

	payload, err := c.encode(warehouse.OpGetInventory, &warehouse.InventoryRequest{
		ControlReference: warehouse.ControlReference{Type: warehouse.MessageInventory},
	})
	require.NoError(t, err)

	var env struct {
		Body struct {
			Op struct {
				XMLName          xml.Name
				ControlReference struct {
					Type string `xml:"Type"`
				} `xml:"ControlReference"`
			} `xml:",any"`
		} `xml:"Body"`
	}
	require.NoError(t, xml.Unmarshal(payload, &env))
	assert.Equal(t, "GetInventory", env.Body.Op.XMLName.Local)
	assert.Equal(t, testNamespace, env.Body.Op.XMLName.Space)
	assert.Equal(t, "BAR", env.Body.Op.ControlReference.Type)
}

func TestClient_Call_Fault(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(soapReply(`<soapenv:Fault><faultcode>soapenv:Server</faultcode><faultstring>Sender unknown</faultstring><detail><code>42</code></detail></soapenv:Fault>`)))
	})

	var resp warehouse.GenericResponse
	err := c.Call(context.Background(), warehouse.OpInsertArticle, &warehouse.ArticleRequest{}, &resp)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrFault))
	assert.False(t, errors.Is(err, ErrTransport))

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, "soapenv:Server", fault.Code)
	assert.Equal(t, "Sender unknown", fault.String)
	require.NotNil(t, fault.Detail)
	assert.Equal(t, "<code>42</code>", fault.Detail.Content)
	assert.Equal(t, "soap fault soapenv:Server: Sender unknown", fault.Error())
}

func TestClient_Call_TransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad gateway html", http.StatusBadGateway, "<html><body>bad gateway</body></html>"},
		{"service unavailable empty", http.StatusServiceUnavailable, ""},
		{"not found plain text", http.StatusNotFound, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			var resp warehouse.GenericResponse
			err := c.Call(context.Background(), warehouse.OpGetInventory, &warehouse.InventoryRequest{}, &resp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTransport))
		})
	}
}

func TestClient_Call_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{Endpoint: url}, nil, nil)
	require.NoError(t, err)

	var resp warehouse.GenericResponse
	err = c.Call(context.Background(), warehouse.OpGetInventory, &warehouse.InventoryRequest{}, &resp)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestClient_Call_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty http body", ""},
		{"empty soap body", soapReply("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			var resp warehouse.GenericResponse
			err := c.Call(context.Background(), warehouse.OpGetInventory, &warehouse.InventoryRequest{}, &resp)
			assert.ErrorIs(t, err, warehouse.ErrUnexpectedShape)
		})
	}
}

func TestClient_Call_DecodesOrderReply(t *testing.T) {
	reply := `<WAR_Response><WAR><GoodsIssue>` +
		`<GoodsIssueHeader><DepositorNo>0000040000</DepositorNo><StatusType>S</StatusType><StatusCode>100</StatusCode></GoodsIssueHeader>` +
		`<CustomerOrderHeader><CustomerOrderNo>20001</CustomerOrderNo><PostalShipmentNo>99.00.123</PostalShipmentNo></CustomerOrderHeader>` +
		`<CustomerOrderList><CustomerOrderDetail><BVPosNo>1</BVPosNo><ArticleNo>SW10007</ArticleNo><QuantityUOM ISO="PCE">2</QuantityUOM></CustomerOrderDetail></CustomerOrderList>` +
		`</GoodsIssue></WAR></WAR_Response>`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(soapReply(reply)))
	})

	var resp warehouse.StatusResponse
	err := c.Call(context.Background(), warehouse.OpGetOrderReply, &warehouse.StatusRequest{CustomerOrderNo: "20001"}, &resp)
	require.NoError(t, err)

	require.Len(t, resp.Replies, 1)
	issue := resp.Replies[0].GoodsIssue
	assert.Equal(t, "20001", issue.CustomerOrderHeader.CustomerOrderNo)
	require.Len(t, issue.CustomerOrderList.Details, 1)
	assert.Equal(t, "SW10007", issue.CustomerOrderList.Details[0].ArticleNo)
	assert.Equal(t, 2.0, issue.CustomerOrderList.Details[0].QuantityUOM.Value)

	st, code := resp.Status()
	assert.Equal(t, warehouse.StatusTypeSuccess, st)
	assert.Equal(t, warehouse.StatusCodeAccepted, code)
}

func TestClient_Call_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var resp warehouse.GenericResponse
	err := c.Call(ctx, warehouse.OpGetInventory, &warehouse.InventoryRequest{}, &resp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}
