package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/logger"
	"github.com/erp/yellowcube/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Operation tags written to the error log
const (
	TagInsertArticle   = "insertArticleMasterData"
	TagCreateOrder     = "createYCCustomerOrder"
	TagGeneralStatus   = "getYCGeneralDataStatus"
	TagGetInventory    = "getInventory"
	TagSaveResponse    = "saveResponseData"
	TagInvoiceDocument = "getOrderInvoiceData"
)

// Service is the entry point of every fulfillment operation. Operations
// never return an error: every failure is logged and reported through the
// result envelope.
type Service struct {
	builder   *Builder
	caller    Caller
	responses ResponseStore
	refs      ReferenceLookup
	errorLog  warehouse.ErrorLog
	logger    *zap.Logger

	documents DocumentSource
	guard     SubmissionGuard
	metrics   *telemetry.FulfillmentMetrics
}

// NewService creates a new fulfillment service
func NewService(
	builder *Builder,
	caller Caller,
	responses ResponseStore,
	refs ReferenceLookup,
	errorLog warehouse.ErrorLog,
	logger *zap.Logger,
) *Service {
	return &Service{
		builder:   builder,
		caller:    caller,
		responses: responses,
		refs:      refs,
		errorLog:  errorLog,
		logger:    logger.Named("fulfillment"),
	}
}

// SetDocumentSource sets the source invoices are loaded from
func (s *Service) SetDocumentSource(documents DocumentSource) {
	s.documents = documents
}

// SetSubmissionGuard sets the guard against duplicate order submissions
func (s *Service) SetSubmissionGuard(guard SubmissionGuard) {
	s.guard = guard
}

// SetMetrics sets the fulfillment metrics recorder
func (s *Service) SetMetrics(m *telemetry.FulfillmentMetrics) {
	s.metrics = m
}

// ---------- Article master data ----------

// SendArticle submits article master data with the given change flag
func (s *Service) SendArticle(ctx context.Context, article warehouse.ArticleRecord, flag warehouse.ChangeFlag) warehouse.ResultEnvelope[*warehouse.GenericResponse] {
	ctx, span := telemetry.StartOperationSpan(ctx, "send_article",
		telemetry.WithAttribute("article_number", article.ArticleNumber),
		telemetry.WithAttribute("change_flag", string(flag)),
	)
	defer span.End()

	start := time.Now()
	kind := warehouse.OperationArticle

	if !article.AllowsESD() {
		err := fmt.Errorf("%w: article %s", warehouse.ErrESDNotAllowed, article.ArticleNumber)
		return failure[*warehouse.GenericResponse](ctx, s, span, kind, TagInsertArticle, err, true)
	}

	req, err := s.builder.BuildArticleRequest(article, flag)
	if err != nil {
		return failure[*warehouse.GenericResponse](ctx, s, span, kind, TagInsertArticle, err, false)
	}

	resp := &warehouse.GenericResponse{}
	if err := s.caller.Call(ctx, warehouse.OpInsertArticle, req, resp); err != nil {
		return failure[*warehouse.GenericResponse](ctx, s, span, kind, TagInsertArticle, err, false)
	}

	outcome := classify(span, resp, kind)
	s.persist(ctx, func() error {
		return s.responses.SaveArticleResponse(ctx, article.ArticleID, resp)
	})

	s.metrics.RecordSubmission(ctx, kind.String(), outcome.String(), time.Since(start))
	s.logger.Info("Article sent",
		zap.String("article_number", article.ArticleNumber),
		zap.String("change_flag", string(req.ArticleList.Article.ChangeFlag)),
		zap.String("outcome", outcome.String()),
		zap.Int("status_code", int(resp.StatusCode)),
	)
	return warehouse.Succeeded(kind, resp, outcome)
}

// ---------- Customer order ----------

// SendOrder creates a customer order, or a return when isReturn is set
func (s *Service) SendOrder(ctx context.Context, order warehouse.OrderRecord, isReturn bool) warehouse.ResultEnvelope[*warehouse.GenericResponse] {
	ctx, span := telemetry.StartOperationSpan(ctx, "send_order",
		telemetry.WithAttribute("order_number", order.OrderNumber),
		telemetry.WithAttribute("is_return", isReturn),
	)
	defer span.End()

	start := time.Now()
	kind := warehouse.OperationOrderCreation
	guardKey := "yellowcube:order:" + strconv.FormatInt(order.OrderID, 10)

	if s.guard != nil {
		acquired, err := s.guard.Acquire(ctx, guardKey)
		if err != nil {
			s.logger.Warn("Submission guard unavailable, sending without it",
				zap.Int64("order_id", order.OrderID), zap.Error(err))
		} else if !acquired {
			err := fmt.Errorf("%w: order %s", warehouse.ErrDuplicateSubmission, order.OrderNumber)
			return failure[*warehouse.GenericResponse](ctx, s, span, kind, TagCreateOrder, err, true)
		}
	}

	env := s.sendOrder(ctx, span, order, isReturn)
	// only an accepted order holds the guard; a rejected one may be corrected and sent again
	if s.guard != nil && (!env.Success || env.Outcome != warehouse.OutcomeAccepted) {
		if err := s.guard.Release(ctx, guardKey); err != nil {
			s.logger.Warn("Failed to release submission guard",
				zap.Int64("order_id", order.OrderID), zap.Error(err))
		}
	}
	if env.Success {
		s.metrics.RecordSubmission(ctx, kind.String(), env.Outcome.String(), time.Since(start))
	}
	return env
}

func (s *Service) sendOrder(ctx context.Context, span trace.Span, order warehouse.OrderRecord, isReturn bool) warehouse.ResultEnvelope[*warehouse.GenericResponse] {
	kind := warehouse.OperationOrderCreation

	if order.InvoiceDocument == "" && s.documents != nil {
		doc, err := s.documents.InvoiceDocument(ctx, order)
		if err != nil {
			// the order is still sent, without documents
			s.logFailure(ctx, TagInvoiceDocument, err, true)
		}
		order.InvoiceDocument = doc
	}

	req, err := s.builder.BuildOrderRequest(ctx, order, isReturn)
	if err != nil {
		var vf *warehouse.ValidationFailure
		if errors.As(err, &vf) {
			// the postal gate has logged the failure already
			telemetry.RecordError(span, err)
			s.metrics.RecordFailure(ctx, kind.String(), "validation")
			return warehouse.Failed[*warehouse.GenericResponse](kind, err)
		}
		return failure[*warehouse.GenericResponse](ctx, s, span, kind, TagCreateOrder, err, false)
	}

	resp := &warehouse.GenericResponse{}
	if err := s.caller.Call(ctx, warehouse.OpCreateCustomerOrder, req, resp); err != nil {
		return failure[*warehouse.GenericResponse](ctx, s, span, kind, TagCreateOrder, err, false)
	}

	outcome := classify(span, resp, kind)
	s.persist(ctx, func() error {
		return s.responses.SaveOrderResponse(ctx, order.OrderID, SlotOrderCreation, resp.Reference, resp)
	})

	s.logger.Info("Order sent",
		zap.String("order_number", order.OrderNumber),
		zap.Bool("is_return", isReturn),
		zap.String("reference", resp.Reference),
		zap.String("outcome", outcome.String()),
		zap.Int("status_code", int(resp.StatusCode)),
	)
	return warehouse.Succeeded(kind, resp, outcome)
}

// ---------- Status queries ----------

// QueryStatus asks the provider for the status of a previously sent
// article (ART), order (WAB) or for the goods issue of an order (WAR)
func (s *Service) QueryStatus(ctx context.Context, id int64, messageType warehouse.MessageType) warehouse.ResultEnvelope[*warehouse.StatusResponse] {
	ctx, span := telemetry.StartOperationSpan(ctx, "query_status",
		telemetry.WithAttribute("record_id", id),
		telemetry.WithAttribute("message_type", messageType.String()),
	)
	defer span.End()

	start := time.Now()
	operation, kind, err := messageType.StatusOperation()
	if err != nil {
		return failure[*warehouse.StatusResponse](ctx, s, span, warehouse.OperationGenericStatus, TagGeneralStatus, err, false)
	}

	reference, err := s.reference(ctx, id, messageType)
	if err != nil {
		return failure[*warehouse.StatusResponse](ctx, s, span, kind, TagGeneralStatus, err, false)
	}

	req, err := s.builder.BuildStatusRequest(reference, messageType)
	if err != nil {
		return failure[*warehouse.StatusResponse](ctx, s, span, kind, TagGeneralStatus, err, false)
	}

	resp := &warehouse.StatusResponse{}
	if err := s.caller.Call(ctx, operation, req, resp); err != nil {
		return failure[*warehouse.StatusResponse](ctx, s, span, kind, TagGeneralStatus, err, false)
	}

	outcome := classify(span, resp, kind)
	s.persist(ctx, func() error {
		switch messageType {
		case warehouse.MessageArticle:
			return s.responses.SaveArticleResponse(ctx, id, &resp.GenericResponse)
		case warehouse.MessageOrder:
			return s.responses.SaveOrderResponse(ctx, id, SlotOrderStatus, "", resp)
		default:
			return s.responses.SaveOrderResponse(ctx, id, SlotOrderReply, "", resp)
		}
	})

	s.metrics.RecordSubmission(ctx, kind.String(), outcome.String(), time.Since(start))
	s.logger.Info("Status queried",
		zap.Int64("record_id", id),
		zap.String("message_type", messageType.String()),
		zap.String("reference", reference),
		zap.String("outcome", outcome.String()),
	)
	return warehouse.Succeeded(kind, resp, outcome)
}

func (s *Service) reference(ctx context.Context, id int64, messageType warehouse.MessageType) (string, error) {
	var (
		ref string
		err error
	)
	switch messageType {
	case warehouse.MessageArticle:
		ref, err = s.refs.ArticleReference(ctx, id)
	case warehouse.MessageOrder:
		ref, err = s.refs.OrderReference(ctx, id)
	default:
		ref, err = s.refs.OrderNumber(ctx, id)
	}
	if err != nil {
		return "", fmt.Errorf("lookup %s reference of %d: %w", messageType, id, err)
	}
	if ref == "" {
		return "", fmt.Errorf("%w: %s %d", warehouse.ErrReferenceNotFound, messageType, id)
	}
	return ref, nil
}

// ---------- Inventory ----------

// FetchInventory loads the current warehouse stock
func (s *Service) FetchInventory(ctx context.Context) warehouse.ResultEnvelope[*warehouse.InventoryResponse] {
	ctx, span := telemetry.StartOperationSpan(ctx, "fetch_inventory")
	defer span.End()

	start := time.Now()
	kind := warehouse.OperationInventory

	resp := &warehouse.InventoryResponse{}
	if err := s.caller.Call(ctx, warehouse.OpGetInventory, s.builder.BuildInventoryRequest(), resp); err != nil {
		return failure[*warehouse.InventoryResponse](ctx, s, span, kind, TagGetInventory, err, false)
	}

	outcome := classify(span, resp, kind)
	s.metrics.RecordSubmission(ctx, kind.String(), outcome.String(), time.Since(start))
	s.logger.Info("Inventory fetched", zap.Int("rows", len(resp.Articles)))
	return warehouse.Succeeded(kind, resp, outcome)
}

// ---------- Helpers ----------

func classify(span trace.Span, resp warehouse.StatusCarrier, kind warehouse.OperationKind) warehouse.StatusOutcome {
	statusType, statusCode := resp.Status()
	outcome := warehouse.Classify(statusType, statusCode, kind)
	telemetry.RecordOutcome(span, outcome.String(), string(statusType), int(statusCode))
	return outcome
}

// failure logs err under tag and converts it into a failure envelope
func failure[T any](
	ctx context.Context,
	s *Service,
	span trace.Span,
	kind warehouse.OperationKind,
	tag string,
	err error,
	isWarning bool,
) warehouse.ResultEnvelope[T] {
	telemetry.RecordError(span, err)
	s.logFailure(ctx, tag, err, isWarning)
	s.metrics.RecordFailure(ctx, kind.String(), tag)
	return warehouse.Failed[T](kind, err)
}

func (s *Service) logFailure(ctx context.Context, tag string, err error, isWarning bool) {
	log := logger.For(ctx, s.logger)
	fields := []zap.Field{zap.String("tag", tag), zap.Error(err)}
	if isWarning {
		log.Warn("Fulfillment operation rejected", fields...)
	} else {
		log.Error("Fulfillment operation failed", fields...)
	}
	if logErr := s.errorLog.Log(ctx, tag, err.Error(), isWarning); logErr != nil {
		s.logger.Error("Failed to write error log", zap.String("tag", tag), zap.Error(logErr))
	}
}

// persist stores a response after a successful call. A failed write is
// logged and does not turn the result into a failure.
func (s *Service) persist(ctx context.Context, save func() error) {
	if err := save(); err != nil {
		s.logFailure(ctx, TagSaveResponse, err, false)
	}
}
