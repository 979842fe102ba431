package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/domain"
	"github.com/suraksha/efir-anchor/internal/present/rest/presenter"
	"github.com/suraksha/efir-anchor/internal/service"
	"github.com/suraksha/efir-anchor/internal/usecase"
)

type Handler struct {
	registration *usecase.RegistrationUsecase
	auth         *service.AuthService
	signal       *service.SignalService
	redactor     *efir.Redactor
}

func NewHandler(
	registration *usecase.RegistrationUsecase,
	auth *service.AuthService,
	signal *service.SignalService,
	redactor *efir.Redactor,
) *Handler {
	return &Handler{
		registration: registration,
		auth:         auth,
		signal:       signal,
		redactor:     redactor,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleRoot)
	e.POST("/api/create-fir", h.handleCreateFIR)
	e.GET("/api/firs", h.handleListFIRs)
	e.POST("/api/auth/login", h.handleLogin)
	e.POST("/api/auth/request-otp", h.handleRequestOTP)
	e.POST("/api/auth/verify-otp", h.handleVerifyOTP)
	e.POST("/api/emergency-alert", h.handleEmergencyAlert)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleRoot(c echo.Context) error {
	return c.HTML(http.StatusOK, "<h1>E-FIR Blockchain Server Online</h1>")
}

func (h *Handler) handleCreateFIR(c echo.Context) error {
	ctx := c.Request().Context()

	// A record is a flat mapping of field name to string value; anything
	// nested or typed must be stringified by the client before submission so
	// the canonical serialization is well defined.
	var fields map[string]string
	if err := c.Bind(&fields); err != nil {
		return presenter.BadRequest(c, "record must be a flat object of string fields")
	}
	if fields[efir.FieldFIRID] == "" {
		return presenter.BadRequest(c, "firId is required")
	}

	result, err := h.registration.Register(ctx, fields)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRecord) {
			return presenter.Conflict(c, "FIR already registered")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":         true,
		"message":         "FIR Registered Successfully",
		"firId":           result.Record.FIRID,
		"firebaseId":      result.Record.FIRID,
		"transactionHash": result.Receipt.TxHash,
		"blockNumber":     result.Receipt.BlockNumber,
		"dataHash":        result.Digest,
	})
}

func (h *Handler) handleListFIRs(c echo.Context) error {
	ctx := c.Request().Context()

	level, _ := ctx.Value(domain.AccessLevelCtxKey).(efir.AccessLevel)

	records, err := h.registration.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	data := make([]map[string]any, 0, len(records))
	for _, record := range records {
		doc := make(map[string]any)
		for k, v := range h.redactor.Redact(record.Fields, level) {
			doc[k] = v
		}
		doc["createdAt"] = record.CreatedAt.Format(time.RFC3339)
		doc["status"] = record.Status
		doc["anchorStatus"] = record.AnchorStatus
		data = append(data, doc)
	}

	buf, err := json.Marshal(echo.Map{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
	if err != nil {
		return presenter.InternalError(c, err)
	}

	// The tag covers the redacted payload, so it varies with access level.
	etag := fmt.Sprintf("\"%016x\"", xxh3.Hash(buf))
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	c.Response().Header().Set("ETag", etag)

	return c.JSONBlob(http.StatusOK, buf)
}

type loginRequest struct {
	BadgeID  string `json:"badgeId"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, "invalid request body")
	}

	session, err := h.auth.Login(ctx, req.BadgeID, req.Password)
	if err != nil {
		return presenter.Unauthorized(c, "Invalid Badge ID or Reference Code")
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"token":   session.Token,
		"level":   session.Level.String(),
	})
}

func (h *Handler) handleRequestOTP(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, "invalid request body")
	}

	masked, err := h.auth.RequestOTP(ctx, req.BadgeID, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return presenter.Unauthorized(c, "Invalid Badge ID or Reference Code")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":     true,
		"message":     "OTP sent to official email",
		"emailMasked": masked,
	})
}

type verifyOTPRequest struct {
	BadgeID string `json:"badgeId"`
	OTP     string `json:"otp"`
}

func (h *Handler) handleVerifyOTP(c echo.Context) error {
	ctx := c.Request().Context()

	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, "invalid request body")
	}

	session, err := h.auth.VerifyOTP(ctx, req.BadgeID, req.OTP)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return presenter.Unauthorized(c, "Invalid OTP Code")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"token":   session.Token,
		"level":   session.Level.String(),
	})
}

type emergencyAlertRequest struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Vitals    map[string]any `json:"vitals"`
}

func (h *Handler) handleEmergencyAlert(c echo.Context) error {
	ctx := c.Request().Context()

	var req emergencyAlertRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, "invalid request body")
	}

	emergencyID := strconv.FormatInt(time.Now().UnixMilli(), 10)

	slog.InfoContext(ctx, "emergency alert received",
		slog.String("type", req.Type),
		slog.String("emergencyId", emergencyID),
	)

	if h.signal != nil {
		event := efir.Event{
			Type:      efir.EventEmergency,
			Message:   req.Type,
			Timestamp: time.Now().UTC(),
		}
		if err := h.signal.Publish(ctx, event); err != nil {
			slog.WarnContext(ctx, "emergency event publish failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return presenter.OK(c, echo.Map{
		"success":     true,
		"message":     "Emergency alert received and processed",
		"emergencyId": emergencyID,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	events, cancel := h.signal.Subscribe(ctx)
	defer cancel()

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			// Clients only send heartbeats; reads exist to detect the close.
			var msg map[string]any
			if err := ws.ReadJSON(&msg); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
