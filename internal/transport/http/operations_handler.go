package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "bordereau/internal/errors"
	"bordereau/internal/infrastructure"
	"bordereau/internal/operations"
	"bordereau/pkg/contracts/events"
)

var validate = validator.New()

// OperationService executes and cancels consolidation runs.
type OperationService interface {
	Execute(ctx context.Context, req operations.OperationRequest) (*operations.OperationResponse, error)
	CancelOperation(id string) error
}

// SnapshotStore serves the current view of running and recent operations.
type SnapshotStore interface {
	GetSnapshot(operationID string) (*events.OperationSnapshot, bool)
	GetAllSnapshots() []*events.OperationSnapshot
}

// OperationsHandler handles the consolidation run endpoints.
type OperationsHandler struct {
	service   OperationService
	snapshots SnapshotStore
	logger    *slog.Logger
}

// NewOperationsHandler creates the operations handler.
func NewOperationsHandler(service OperationService, snapshots SnapshotStore, logger *slog.Logger) *OperationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsHandler{
		service:   service,
		snapshots: snapshots,
		logger:    logger.With(slog.String("handler", "operations")),
	}
}

// StartRequest is the body of POST /api/operations. All fields are
// optional; the configured defaults apply when omitted.
type StartRequest struct {
	InputDir   string `json:"input_dir" validate:"omitempty,min=1"`
	OutputPath string `json:"output_path" validate:"omitempty,endswith=.xlsx"`
	CSVPath    string `json:"csv_path" validate:"omitempty,endswith=.csv"`
}

// Bind implements render.Binder.
func (req *StartRequest) Bind(r *http.Request) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.OutputPath != "" && strings.HasPrefix(filepath.Base(req.OutputPath), "~$") {
		return errors.New("output path must not be a lock file")
	}
	return nil
}

// StartResponse is the 202 body of POST /api/operations.
type StartResponse struct {
	OperationID string `json:"operation_id"`
	Status      string `json:"status"`
	StatusURL   string `json:"status_url"`
	WebSocket   string `json:"websocket"`
}

// Routes returns the chi router for /api/operations.
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.StartOperation)
	r.Get("/", h.ListOperations)
	r.Get("/{id}", h.GetOperation)
	r.Delete("/{id}", h.CancelOperation)
	return r
}

// StartOperation handles POST /api/operations. The run executes on its
// own goroutine; the response carries the operation ID to follow it.
func (h *OperationsHandler) StartOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("bordereau.operations")

	ctx, span := tracer.Start(ctx, "operations_handler.start",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/operations"),
		),
	)
	defer span.End()

	data := &StartRequest{}
	if err := render.Bind(r, data); err != nil {
		span.RecordError(err)
		h.logger.WarnContext(ctx, "invalid start request", slog.Any("error", err))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	operationID := uuid.New().String()
	traceID := infrastructure.GetTraceID(ctx)
	span.SetAttributes(attribute.String("operation.id", operationID))

	request := operations.OperationRequest{
		ID:         operationID,
		InputDir:   data.InputDir,
		OutputPath: data.OutputPath,
	}
	if data.CSVPath != "" {
		request.Parameters = map[string]interface{}{
			operations.ContextKeyCSVPath: data.CSVPath,
		}
	}

	h.logger.InfoContext(ctx, "consolidation run requested",
		slog.String("operation_id", operationID),
		slog.String("input_dir", data.InputDir),
		slog.String("output_path", data.OutputPath))

	// The run outlives the HTTP request. Progress is published over the
	// WebSocket hub and the operation endpoints.
	runCtx := infrastructure.WithTraceID(context.Background(), traceID)
	go func() {
		if _, err := h.service.Execute(runCtx, request); err != nil {
			h.logger.ErrorContext(runCtx, "consolidation run failed",
				slog.String("operation_id", operationID),
				slog.Any("error", err))
		}
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, StartResponse{
		OperationID: operationID,
		Status:      string(operations.OperationStatusPending),
		StatusURL:   "/api/operations/" + operationID,
		WebSocket:   "/ws",
	})
}

// GetOperation handles GET /api/operations/{id}.
func (h *OperationsHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snapshot, ok := h.snapshots.GetSnapshot(id)
	if !ok {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrOperationNotFound))
		return
	}
	render.JSON(w, r, snapshot)
}

// ListOperations handles GET /api/operations.
func (h *OperationsHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	snapshots := h.snapshots.GetAllSnapshots()
	render.JSON(w, r, map[string]interface{}{
		"operations": snapshots,
		"count":      len(snapshots),
	})
}

// CancelOperation handles DELETE /api/operations/{id}.
func (h *OperationsHandler) CancelOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.CancelOperation(id); err != nil {
		if errors.Is(err, operations.ErrOperationNotFound) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrOperationNotFound))
			return
		}
		h.logger.ErrorContext(ctx, "cancel failed",
			slog.String("operation_id", id),
			slog.Any("error", err))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrOperationExecution(err)))
		return
	}

	h.logger.InfoContext(ctx, "operation cancelled", slog.String("operation_id", id))
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{
		"operation_id": id,
		"status":       string(operations.OperationStatusCancelled),
	})
}
