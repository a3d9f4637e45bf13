package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/capital-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/pkg/model"
)

const (
	venue          = "capital"
	queueGroup     = "capital-adapter-workers"
	requestTimeout = 20 * time.Second

	// CorrelationHeader carries the caller's correlation id on requests.
	CorrelationHeader = "correlation_id"
)

// Operations served over NATS. The subject is "<prefix>.<operation>".
const (
	OpPositions = "positions.v1"
	OpOrders    = "orders.v1"
	OpMarkets   = "markets.v1"
	OpTime      = "time.v1"
	OpPing      = "ping.v1"
	OpSession   = "session.v1"
)

var operations = []string{OpPositions, OpOrders, OpMarkets, OpTime, OpPing, OpSession}

// CapitalService is the subset of the Capital.com client used by the responder.
type CapitalService interface {
	Authenticate(ctx context.Context) error
	Invalidate()
	IsAuthenticated() bool
	GetPositions(ctx context.Context) any
	GetOrders(ctx context.Context) any
	GetTopLevelMarketCategories(ctx context.Context) any
	PingSession(ctx context.Context) any
	GetServerTime(ctx context.Context) any
}

// SessionRequest is the body of a session.v1 request. An empty body or action
// reports the current state.
type SessionRequest struct {
	Action string `json:"action"` // "login", "logout" or "status"
}

// SessionStatus is the payload of a session.v1 reply.
type SessionStatus struct {
	Authenticated bool `json:"authenticated"`
}

// Responder answers NATS requests with Capital.com data wrapped in a model.Envelope.
type Responder struct {
	ctx     context.Context
	logger  *zap.Logger
	nc      *nats.Conn
	service CapitalService
	prefix  string
	subs    []*nats.Subscription
}

// NewResponder constructs a Responder for subjects under prefix.
func NewResponder(ctx context.Context, logger *zap.Logger, nc *nats.Conn, service CapitalService, prefix string) *Responder {
	return &Responder{
		ctx:     ctx,
		logger:  logger,
		nc:      nc,
		service: service,
		prefix:  strings.TrimSuffix(prefix, "."),
	}
}

// Subjects returns the subjects the responder listens on.
func (r *Responder) Subjects() []string {
	out := make([]string, 0, len(operations))
	for _, op := range operations {
		out = append(out, r.prefix+"."+op)
	}
	return out
}

// Start subscribes to every subject in a shared queue group.
func (r *Responder) Start() error {
	for _, subj := range r.Subjects() {
		sub, err := r.nc.QueueSubscribe(subj, queueGroup, r.handleMessage)
		if err != nil {
			r.Stop()
			return fmt.Errorf("subscribe %s: %w", subj, err)
		}
		r.subs = append(r.subs, sub)
		r.logger.Info("subscribed to NATS subject", zap.String("subject", subj))
	}
	return nil
}

// Stop removes all subscriptions.
func (r *Responder) Stop() {
	for _, sub := range r.subs {
		if err := sub.Unsubscribe(); err != nil {
			r.logger.Warn("nats.unsubscribe_failed", zap.String("subject", sub.Subject), zap.Error(err))
		}
	}
	r.subs = nil
}

func (r *Responder) handleMessage(msg *nats.Msg) {
	start := time.Now()

	env := r.Handle(msg.Subject, msg.Data, correlationID(msg))
	data, err := json.Marshal(env)
	if err != nil {
		r.logger.Error("nats.reply_encode_failed", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		r.logger.Warn("nats.reply_failed", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}

	r.logger.Debug("message handled",
		zap.String("subject", msg.Subject),
		zap.String("correlation_id", env.CorrelationID.String()),
		zap.Duration("latency", time.Since(start)),
	)
}

// Handle serves one request and builds its reply envelope. Failures are
// reported in the envelope's Error field.
func (r *Responder) Handle(subject string, data []byte, correlation uuid.UUID) *model.Envelope {
	op := strings.TrimPrefix(subject, r.prefix+".")
	env := model.NewEnvelope(venue, op, correlation)

	ctx, cancel := context.WithTimeout(r.ctx, requestTimeout)
	defer cancel()

	payload, err := r.dispatch(ctx, op, data)
	if err == nil {
		env.Payload, err = json.Marshal(payload)
	}
	if err != nil {
		env.Error = err.Error()
		metrics.IncNATSReply(op, "error")
		r.logger.Warn("capital.nats.request_failed",
			zap.String("subject", subject),
			zap.String("correlation_id", env.CorrelationID.String()),
			zap.Error(err))
		return env
	}

	metrics.IncNATSReply(op, "ok")
	return env
}

func (r *Responder) dispatch(ctx context.Context, op string, data []byte) (any, error) {
	switch op {
	case OpTime:
		return r.service.GetServerTime(ctx), nil
	case OpSession:
		return r.session(ctx, data)
	case OpPositions:
		return r.authenticated(ctx, r.service.GetPositions)
	case OpOrders:
		return r.authenticated(ctx, r.service.GetOrders)
	case OpMarkets:
		return r.authenticated(ctx, r.service.GetTopLevelMarketCategories)
	case OpPing:
		return r.authenticated(ctx, r.service.PingSession)
	}
	return nil, fmt.Errorf("unknown operation %q", op)
}

func (r *Responder) authenticated(ctx context.Context, get func(context.Context) any) (any, error) {
	if !r.service.IsAuthenticated() {
		return nil, fmt.Errorf("session not authenticated")
	}
	return get(ctx), nil
}

func (r *Responder) session(ctx context.Context, data []byte) (any, error) {
	var req SessionRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("invalid session request: %w", err)
		}
	}

	switch req.Action {
	case "", "status":
	case "login":
		if err := r.service.Authenticate(ctx); err != nil {
			return nil, err
		}
	case "logout":
		r.service.Invalidate()
	default:
		return nil, fmt.Errorf("unknown session action %q", req.Action)
	}
	return SessionStatus{Authenticated: r.service.IsAuthenticated()}, nil
}

// correlationID reads the correlation id header. A missing or malformed value
// yields uuid.Nil so that a fresh id is generated.
func correlationID(msg *nats.Msg) uuid.UUID {
	if msg == nil || msg.Header == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(msg.Header.Get(CorrelationHeader))
	if err != nil {
		return uuid.Nil
	}
	return id
}
