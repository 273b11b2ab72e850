// Package researchbridge adapts a research-execution backend into a small
// set of callable tools. Each dispatch runs validate → backend call →
// normalize and always terminates in exactly one serialized envelope; no
// failure escapes to the transport.
package researchbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petal-labs/researchbridge/backend"
)

// Op identifies one of the four adapter operations. Operation names arriving
// from the transport are parsed into this closed set before any handler
// logic runs.
type Op string

const (
	OpSpawn      Op = "spawn"
	OpGetStatus  Op = "getStatus"
	OpGetResults Op = "getResults"
	OpList       Op = "list"
)

// ParseOp translates a raw operation name into the closed operation set.
func ParseOp(name string) (Op, bool) {
	switch Op(name) {
	case OpSpawn, OpGetStatus, OpGetResults, OpList:
		return Op(name), true
	}
	return "", false
}

// Ops returns all adapter operations in declaration order.
func Ops() []Op {
	return []Op{OpSpawn, OpGetStatus, OpGetResults, OpList}
}

// Backend is the proxy contract consumed by the adapter. *backend.Client
// satisfies it; tests substitute doubles.
type Backend interface {
	CreateExecution(ctx context.Context, in backend.CreateExecutionInput) (backend.ExecutionCreated, error)
	GetExecutionDetail(ctx context.Context, id string) (backend.ExecutionDetail, error)
	GetResultDocument(ctx context.Context, id string) (backend.ResultDocument, error)
	ListExecutions(ctx context.Context, opts backend.ListOptions) ([]backend.ExecutionSummary, error)
}

// AdapterConfig wires an adapter. Backend is required; everything else has
// working defaults.
type AdapterConfig struct {
	Backend  Backend
	Logger   *slog.Logger
	Observer Observer
	// Now overrides the clock used for error-report timestamps in tests.
	Now func() time.Time
}

// Adapter dispatches tool calls. It is stateless across calls: all fields
// are read-only after construction, so any number of dispatches may run
// concurrently.
type Adapter struct {
	backend  Backend
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// NewAdapter validates the configuration and returns a ready adapter.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if cfg.Backend == nil {
		return nil, errors.New("researchbridge: backend is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Adapter{
		backend:  cfg.Backend,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		now:      cfg.Now,
	}, nil
}

// Dispatch executes one tool call and returns the serialized envelope.
// It never fails: unknown operations, validation failures, backend errors,
// and recovered panics all come back as ErrorReport payloads.
func (a *Adapter) Dispatch(ctx context.Context, name string, args map[string]any) string {
	requestID := uuid.NewString()
	start := time.Now()

	op, known := ParseOp(name)
	if !known {
		a.logger.WarnContext(ctx, "unknown tool", "tool", name, "request_id", requestID)
		a.observe(DispatchObservation{
			Op:        Op(name),
			RequestID: requestID,
			Elapsed:   time.Since(start),
			ErrorCode: CodeUnknownTool,
		})
		return a.encodeError(newErrorReport(
			CodeUnknownTool,
			fmt.Sprintf("unknown tool %q", name),
			a.now(),
		))
	}

	payload, err := a.dispatch(ctx, op, args)
	elapsed := time.Since(start)

	if err != nil {
		adapterErr := classifyError(err)
		a.logger.ErrorContext(ctx, "dispatch failed",
			"op", string(op),
			"request_id", requestID,
			"code", adapterErr.Code,
			"error", adapterErr.Message,
			"elapsed", elapsed,
		)
		a.observe(DispatchObservation{
			Op:        op,
			RequestID: requestID,
			Elapsed:   elapsed,
			ErrorCode: adapterErr.Code,
		})
		return a.encodeError(newErrorReport(adapterErr.Code, adapterErr.Message, a.now()))
	}

	encoded, encodeErr := encodePayload(payload)
	if encodeErr != nil {
		a.observe(DispatchObservation{
			Op:        op,
			RequestID: requestID,
			Elapsed:   elapsed,
			ErrorCode: CodeInternalError,
		})
		return a.encodeError(newErrorReport(CodeInternalError, encodeErr.Error(), a.now()))
	}

	a.logger.DebugContext(ctx, "dispatch ok",
		"op", string(op),
		"request_id", requestID,
		"elapsed", elapsed,
	)
	a.observe(DispatchObservation{
		Op:        op,
		RequestID: requestID,
		Elapsed:   elapsed,
		Success:   true,
	})
	return encoded
}

// dispatch runs the validate → proxy → normalize sequence for one known
// operation. Panics anywhere in the sequence are converted to the
// dispatch-level catch-all code so the single-envelope contract holds even
// against adapter defects.
func (a *Adapter) dispatch(ctx context.Context, op Op, args map[string]any) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newAdapterError(CodeToolExecutionError, fmt.Sprintf("tool execution panic: %v", r), nil)
		}
	}()

	switch op {
	case OpSpawn:
		return a.spawn(ctx, args)
	case OpGetStatus:
		return a.getStatus(ctx, args)
	case OpGetResults:
		return a.getResults(ctx, args)
	case OpList:
		return a.list(ctx, args)
	default:
		return nil, newAdapterError(CodeUnknownTool, fmt.Sprintf("unknown operation %q", op), nil)
	}
}

func (a *Adapter) spawn(ctx context.Context, args map[string]any) (any, error) {
	in, err := parseSpawnArgs(args)
	if err != nil {
		return nil, err
	}

	created, err := a.backend.CreateExecution(ctx, backend.CreateExecutionInput{
		Topic:            in.Topic,
		Goals:            in.Goals,
		InteractionLimit: in.InteractionLimit,
	})
	if err != nil {
		return nil, err
	}

	return newCreateAction(in.Topic, created), nil
}

func (a *Adapter) getStatus(ctx context.Context, args map[string]any) (any, error) {
	id, err := parseExecutionID(args)
	if err != nil {
		return nil, err
	}

	detail, err := a.backend.GetExecutionDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	return newStatusReport(id, detail), nil
}

func (a *Adapter) getResults(ctx context.Context, args map[string]any) (any, error) {
	id, err := parseExecutionID(args)
	if err != nil {
		return nil, err
	}

	detail, err := a.backend.GetExecutionDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Status != backend.StatusCompleted {
		return nil, newAdapterError(
			CodeExecutionNotCompleted,
			fmt.Sprintf("execution %s is not completed yet, current status: %s", id, detail.Status),
			nil,
		)
	}

	doc, err := a.backend.GetResultDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.HasContent() {
		return nil, newAdapterError(
			CodeResultsNotAvailable,
			fmt.Sprintf("execution %s is completed but its result document has no content", id),
			nil,
		)
	}

	// Passthrough: the result document content is returned untouched.
	return json.RawMessage(doc.Content), nil
}

func (a *Adapter) list(ctx context.Context, args map[string]any) (any, error) {
	in, err := parseListArgs(args)
	if err != nil {
		return nil, err
	}

	summaries, err := a.backend.ListExecutions(ctx, backend.ListOptions{
		TopicFilter:  in.TopicFilter,
		StatusFilter: in.StatusFilter,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, err
	}

	return newListReport(summaries), nil
}

func (a *Adapter) observe(observation DispatchObservation) {
	a.observer.ObserveDispatch(observation)
}

// encodeError serializes an ErrorReport. The fixed shape cannot fail to
// marshal; the literal fallback keeps the contract if that ever changes.
func (a *Adapter) encodeError(report ErrorReport) string {
	encoded, err := encodePayload(report)
	if err != nil {
		return fmt.Sprintf(
			`{"@context":%q,"@type":%q,"errorCode":%q,"description":"error report encoding failed"}`,
			schemaContext, typeReport, CodeInternalError,
		)
	}
	return encoded
}
