package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/persistence/models"
)

// ArticleView is one row of the article list
type ArticleView struct {
	ArticleID  int64           `json:"artid"`
	Reference  string          `json:"ycReference"`
	StatusType string          `json:"statusType"`
	StatusCode int             `json:"statusCode"`
	IsAccepted int             `json:"isaccepted"`
	Response   json.RawMessage `json:"ycResponse,omitempty"`
	LastSentAt time.Time       `json:"lastSent"`
}

// OrderView is one row of the order list. The goods issue reply is
// flattened with its positions normalized to a list.
type OrderView struct {
	OrderID        int64                           `json:"ordid"`
	Reference      string                          `json:"ycReference"`
	Eori           string                          `json:"eori,omitempty"`
	IsWABAccepted  int                             `json:"iswabaccepted"`
	IsWARAccepted  int                             `json:"iswaraccepted"`
	IsManual       bool                            `json:"ismanual"`
	WabResponse    json.RawMessage                 `json:"ycWabResponse,omitempty"`
	StatusResponse json.RawMessage                 `json:"ycResponse,omitempty"`
	GoodsIssue     *warehouse.GoodsIssueHeader     `json:"GoodsIssueHeader,omitempty"`
	CustomerOrder  *warehouse.CustomerOrderHeader  `json:"CustomerOrderHeader,omitempty"`
	Positions      []warehouse.CustomerOrderDetail `json:"CustomerOrderList"`
	PositionCount  int                             `json:"ycWarCount"`
	LastSentAt     *time.Time                      `json:"lastSent,omitempty"`
}

// ListArticles returns the stored article replies, newest first. search
// matches the reference or the stored reply.
func (r *GormResponseRepository) ListArticles(ctx context.Context, search string) ([]ArticleView, error) {
	var rows []models.ArticleResponseModel
	query := r.db.WithContext(ctx).Model(&models.ArticleResponseModel{})
	query = likeAny(query, search, "yc_reference", "yc_response")
	if err := query.Order("last_sent_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]ArticleView, len(rows))
	for i, row := range rows {
		outcome := warehouse.Classify(warehouse.StatusType(row.StatusType), warehouse.StatusCode(row.StatusCode), warehouse.OperationArticle)
		views[i] = ArticleView{
			ArticleID:  row.ArticleID,
			Reference:  row.Reference,
			StatusType: row.StatusType,
			StatusCode: row.StatusCode,
			IsAccepted: warehouse.AcceptanceFlag(outcome),
			Response:   rawJSON(row.Response),
			LastSentAt: row.LastSentAt,
		}
	}
	return views, nil
}

// ListOrders returns the stored order replies, newest first. manualSend is
// copied onto every row for the admin grid.
func (r *GormResponseRepository) ListOrders(ctx context.Context, search string, manualSend bool) ([]OrderView, error) {
	var rows []models.OrderResponseModel
	query := r.db.WithContext(ctx).Model(&models.OrderResponseModel{})
	query = likeAny(query, search, "yc_reference", "eori", "yc_war_response")
	if err := query.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]OrderView, len(rows))
	for i, row := range rows {
		views[i] = orderView(row, manualSend)
	}
	return views, nil
}

func orderView(row models.OrderResponseModel, manualSend bool) OrderView {
	v := OrderView{
		OrderID:        row.OrderID,
		Reference:      row.Reference,
		Eori:           row.Eori,
		IsManual:       manualSend,
		WabResponse:    rawJSON(row.WabResponse),
		StatusResponse: rawJSON(row.StatusResponse),
		Positions:      []warehouse.CustomerOrderDetail{},
		LastSentAt:     row.LastSentAt,
	}

	v.IsWABAccepted = orderFlag(row.WabResponse, warehouse.OperationOrderCreation)
	v.IsWARAccepted = orderFlag(row.StatusResponse, warehouse.OperationOrderReply)

	var reply warehouse.StatusResponse
	if row.WarResponse != "" && json.Unmarshal([]byte(row.WarResponse), &reply) == nil && len(reply.Replies) > 0 {
		issue := reply.Replies[0].GoodsIssue
		v.GoodsIssue = &issue.GoodsIssueHeader
		v.CustomerOrder = &issue.CustomerOrderHeader
		if issue.CustomerOrderList.Details != nil {
			v.Positions = issue.CustomerOrderList.Details
		}
	}
	v.PositionCount = len(v.Positions)
	return v
}

// orderFlag classifies a stored order payload with the table of the
// operation that produced it. An empty or unreadable payload is 0.
func orderFlag(payload string, kind warehouse.OperationKind) int {
	st, code, ok := decodeStatus(payload)
	if !ok {
		return 0
	}
	return warehouse.AcceptanceFlag(warehouse.Classify(st, code, kind))
}

func decodeStatus(payload string) (warehouse.StatusType, warehouse.StatusCode, bool) {
	if payload == "" {
		return "", 0, false
	}
	var resp warehouse.GenericResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return "", 0, false
	}
	return resp.StatusType, resp.StatusCode, true
}

func rawJSON(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}

// likeAny filters rows where any of columns contains search
func likeAny(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + escapeLikePattern(search) + "%"
	cond := query.Session(&gorm.Session{NewDB: true}).Where(columns[0]+" LIKE ?", pattern)
	for _, col := range columns[1:] {
		cond = cond.Or(col+" LIKE ?", pattern)
	}
	return query.Where(cond)
}

// escapeLikePattern escapes special characters in LIKE patterns
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
