package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/beevik/etree"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/domain/validation"
	"github.com/charging-platform/oicp-gateway/internal/gateway"
	"github.com/charging-platform/oicp-gateway/internal/logger"
	"github.com/charging-platform/oicp-gateway/internal/transport/soap"
)

// Dispatcher 入站负载分发
type Dispatcher interface {
	Dispatch(ctx context.Context, payload *etree.Element, endpoint string) (*etree.Element, oicp.Operation)
}

// Handler 接收 Hubject 回调的 SOAP 端点
type Handler struct {
	dispatcher     Dispatcher
	validator      *validation.Validator
	maxMessageSize int
	logger         *logger.Logger
}

// NewHandler 创建端点处理器
func NewHandler(dispatcher Dispatcher, maxMessageSize int, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		dispatcher:     dispatcher,
		validator:      validation.NewValidator(),
		maxMessageSize: maxMessageSize,
		logger:         log,
	}
}

// Routes 注册路由。操作由负载根元素决定，路径只用于区分服务
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/RNs/{provider}", func(r chi.Router) {
		r.Post("/Authorization", h.ServeSOAP)
		r.Post("/Reservation", h.ServeSOAP)
		r.Post("/CDRs", h.ServeSOAP)
		r.Post("/AuthenticationData", h.ServeSOAP)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

// ServeSOAP 读取信封、分发负载并写回应答。任何输入错误都以 DataError 应答返回，不返回 SOAP Fault
func (h *Handler) ServeSOAP(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if err := h.validator.ValidateProviderID(provider); err != nil {
		h.reject(w, r, err.Error())
		return
	}

	limit := int64(h.maxMessageSize)
	if limit <= 0 {
		limit = 4 << 20
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, r, "message exceeds maximum allowed size")
			return
		}
		h.reject(w, r, "failed to read request body")
		return
	}
	if err := h.validator.ValidateMessageSize(data, int(limit)); err != nil {
		h.reject(w, r, err.Error())
		return
	}

	payload, err := soap.Parse(data)
	if err != nil {
		h.reject(w, r, err.Error())
		return
	}

	ack, op := h.dispatcher.Dispatch(r.Context(), payload, r.URL.Path)
	h.logger.Debugf("Handled %s for provider %s on %s", op, provider, r.URL.Path)
	h.write(w, ack)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, description string) {
	h.logger.Warnf("Rejecting inbound request on %s: %s", r.URL.Path, description)
	h.write(w, gateway.RejectPayload(description))
}

func (h *Handler) write(w http.ResponseWriter, ack *etree.Element) {
	data, err := soap.Marshal(ack)
	if err != nil {
		h.logger.ErrorWithErr(err, "failed to marshal acknowledgement")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", soap.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorWithErr(err, "failed to write acknowledgement")
	}
}
