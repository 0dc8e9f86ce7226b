package api

import (
	"errors"
	"net/http"
	"time"

	models "PulseLab/internal/domain/models"
	"PulseLab/internal/service/live"
	"PulseLab/internal/service/metrics"
	"PulseLab/internal/service/ratelimit"
	"PulseLab/internal/usecase"
	xhttp "PulseLab/pkg/http"
	xlogger "PulseLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SessionsEchoHandler exposes the session commands, live status and HRV
// reports over Echo-based HTTP handlers following Clean Architecture.
type SessionsEchoHandler struct {
	logger  *xlogger.Logger
	manager *usecase.SessionManager
	reports *usecase.ReportService
	status  *live.Status
	rl      *ratelimit.Limiter
}

func NewSessionsEchoHandler(logger *xlogger.Logger, manager *usecase.SessionManager, reports *usecase.ReportService, status *live.Status) *SessionsEchoHandler {
	metrics.Register()
	return &SessionsEchoHandler{
		logger:  logger,
		manager: manager,
		reports: reports,
		status:  status,
		rl:      ratelimit.New(),
	}
}

func (h *SessionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/sessions", h.Start)
	g.POST("/sessions/stop", h.Stop)
	g.POST("/sessions/mark", h.Mark)
	g.GET("/sessions", h.Participants)
	g.GET("/sessions/:participant/hrv", h.Report)
	g.GET("/live", h.Live)
	g.GET("/status", h.Status)
}

// Start opens a recording session for a participant.
func (h *SessionsEchoHandler) Start(c echo.Context) error {
	req := &models.StartSessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	s, err := h.manager.StartSession(c.Request().Context(), req.Participant)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyRecording) {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RECORDING", "a session is already recording", http.StatusConflict).WithError(err))
		}
		h.logger.Error("session start error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, map[string]interface{}{
		"participant": s.Participant,
		"started_at":  s.StartedAt,
	})
}

// Stop seals the active session.
func (h *SessionsEchoHandler) Stop(c echo.Context) error {
	s, err := h.manager.StopSession(c.Request().Context())
	if err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no session is recording").WithError(err))
		}
		h.logger.Error("session stop error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"participant": s.Participant,
		"sealed_at":   s.StoppedAt,
		"rr_samples":  len(s.Samples(models.SignalRRInterval)),
		"markers":     len(s.Markers()),
	})
}

// Mark inserts a marked timestamp into the active session.
func (h *SessionsEchoHandler) Mark(c echo.Context) error {
	req := &models.MarkTimestampRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	m, err := h.manager.MarkTimestamp(c.Request().Context(), req.Label)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoActiveSession):
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no session is recording").WithError(err))
		case errors.Is(err, models.ErrMarkerNotAfter):
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("marker must be after the previous one").WithError(err))
		}
		h.logger.Error("mark error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, m)
}

// Participants lists every participant with recorded data.
func (h *SessionsEchoHandler) Participants(c echo.Context) error {
	names, err := h.reports.Participants(c.Request().Context())
	if err != nil {
		h.logger.Error("participants error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, names, int64(len(names)))
}

// Report computes or returns the cached HRV report for a participant.
func (h *SessionsEchoHandler) Report(c echo.Context) error {
	start := time.Now()
	endpoint := "hrv"
	defer func() { metrics.ReportLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.HRVReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":hrv", 5, 2) {
		h.logger.Warn("hrv report rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}
	var none time.Time
	from := xhttp.ParseTimeDefault(req.From, none)
	to := xhttp.ParseTimeDefault(req.To, none)

	report, err := h.reports.Report(c.Request().Context(), req.Participant, req.Clean, from, to)
	if err != nil {
		metrics.ReportErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("hrv report error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if report.Overall.RR.Count == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no recorded data for %s", req.Participant))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, report)
}

// Live returns the current heart rate, ECG-derived rate and rolling HRV.
func (h *SessionsEchoHandler) Live(c echo.Context) error {
	now := time.Now()
	out := map[string]interface{}{}
	if hr, ok := h.status.HeartRate(now); ok {
		out["heart_rate"] = hr
	}
	if ecg, ok := h.status.ECGRate(now); ok {
		out["ecg_rate"] = ecg
	}
	if rolling, ok := h.status.RollingHRV(now); ok {
		out["rolling_hrv"] = rolling
	}
	return xhttp.SuccessResponse(c, out)
}

// Status reports whether a session is recording and for whom.
func (h *SessionsEchoHandler) Status(c echo.Context) error {
	participant, recording := h.manager.Active()
	out := map[string]interface{}{"recording": recording}
	if recording {
		out["participant"] = participant
	}
	return xhttp.SuccessResponse(c, out)
}
