package order

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	orderDomain "github.com/Akhileshait/tradenet/internal/domain/order"
	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	orderInfra "github.com/Akhileshait/tradenet/internal/infrastructure/postgresql/order"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/util"
)

const maxBodyBytes = 1 << 16

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler serves the order endpoints of the gateway.
type Handler struct {
	intakeUsecase orderDomain.IntakeUsecase
	logger        logger.Interface
}

// NewHandler creates a new Handler.
func NewHandler(intakeUsecase orderDomain.IntakeUsecase, logger logger.Interface) *Handler {
	return &Handler{intakeUsecase: intakeUsecase, logger: logger}
}

// Register mounts the order routes on r behind authenticate.
func (h *Handler) Register(r *mux.Router, authenticate mux.MiddlewareFunc) {
	orders := r.NewRoute().Subrouter()
	orders.Use(authenticate)

	orders.HandleFunc("/orders", h.handleSubmit).Methods(http.MethodPost)
	orders.HandleFunc("/api/trading/orders", h.handleSubmit).Methods(http.MethodPost)
	orders.HandleFunc("/orders", h.handleList).Methods(http.MethodGet)
	orders.HandleFunc("/orders/{id}", h.handleGet).Methods(http.MethodGet)
}

// SubmitOrderRequest is the body of POST /orders.
type SubmitOrderRequest struct {
	Symbol   string        `json:"symbol"`
	Side     string        `json:"side"`
	Type     string        `json:"type"`
	Quantity QuantityField `json:"quantity"`
}

// QuantityField accepts a quantity given as a JSON string or number.
type QuantityField string

// UnmarshalJSON keeps number literals verbatim so no precision is lost.
func (q *QuantityField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*q = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QuantityField(s)
	default:
		*q = QuantityField(data)
	}
	return nil
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// DeliveryFailedResponse is returned when the order was stored but could not
// be handed to the execution worker.
type DeliveryFailedResponse struct {
	OrderID string    `json:"orderId"`
	Status  v1.Status `json:"status"`
	Warning string    `json:"warning"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body SubmitOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, errors.ValidationError, "request body must be a JSON object", "")
		return
	}

	result, err := h.intakeUsecase.Submit(r.Context(), v1.SubmitRequest{
		UserID:   util.GetActorID(r.Context()),
		Symbol:   body.Symbol,
		Side:     body.Side,
		Type:     body.Type,
		Quantity: string(body.Quantity),
	})
	if err != nil {
		if result != nil && errors.IsCode(err, errors.DeliveryError) {
			respondJSON(w, http.StatusBadGateway, DeliveryFailedResponse{
				OrderID: result.OrderID,
				Status:  result.Status,
				Warning: "order stored but not dispatched for execution",
			})
			return
		}
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.intakeUsecase.GetOrder(r.Context(), util.GetActorID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := orderInfra.Filter{
		UserID: util.GetActorID(r.Context()),
		Symbol: query.Get("symbol"),
		Status: v1.Status(query.Get("status")),
	}

	var err error
	if filter.Limit, err = intParam(query.Get("limit")); err != nil {
		respondError(w, http.StatusBadRequest, errors.ValidationError, "limit must be a non-negative integer", "limit")
		return
	}
	if filter.Offset, err = intParam(query.Get("offset")); err != nil {
		respondError(w, http.StatusBadRequest, errors.ValidationError, "offset must be a non-negative integer", "offset")
		return
	}

	orders, err := h.intakeUsecase.ListOrders(r.Context(), filter)
	if err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*orderInfra.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ValidationError, "invalid integer", "")
	}
	return n, nil
}

func (h *Handler) respondUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.CodeOf(err)
	status := statusOf(code)

	message := "internal error"
	field := ""
	if details, ok := errors.DetailsOf(err); ok && status < http.StatusInternalServerError {
		message = details.Message
		field = details.Field
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), err, logger.Field{Key: "action", Value: "order.handler"})
	}
	if code == "" {
		code = errors.GeneralInternalServerError
	}

	respondError(w, status, code, message, field)
}

func statusOf(code errors.ErrorCode) int {
	switch code {
	case errors.ValidationError, errors.GeneralBadRequestError:
		return http.StatusBadRequest
	case errors.GeneralUnauthorizedError:
		return http.StatusUnauthorized
	case errors.GeneralNotFoundError:
		return http.StatusNotFound
	case errors.DeliveryError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code errors.ErrorCode, message, field string) {
	respondJSON(w, status, ErrorResponse{
		Error:   string(code),
		Message: message,
		Field:   field,
	})
}
