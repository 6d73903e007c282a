package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/core/service"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type ledPressResponse struct {
	Command string `json:"command"`
	Repeat  int    `json:"repeat"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.POST("/api/led/:name", s.LEDPressHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

// LEDPressHandler presses one remote button. The optional repeat query
// parameter sets how many times the sequence is sent again.
func (s *Server) LEDPressHandler(c echo.Context) error {
	primary, ok := devapi.ResolveLEDName(c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown led command"})
	}
	repeat := 0
	if r := c.QueryParam("repeat"); r != "" {
		n, err := strconv.Atoi(r)
		if err != nil || n < 0 || n > service.MaxIRRepeat {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: service.ErrRepeatOutOfRange.Error()})
		}
		repeat = n
	}

	res, err := s.rootContext.RequestFuture(s.masterActor, domain.DeviceCommandRequest{
		Command: domain.LEDPressCommand{
			Names:  []string{primary},
			Repeat: repeat,
		},
	}, s.commandTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	}
	response, ok := res.(domain.DeviceCommandResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "unexpected response"})
	}
	if response.HasResponseError() {
		status := http.StatusBadGateway
		switch err := response.GetResponseError(); {
		case errors.Is(err, devapi.ErrUnknownLED):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrCommandQueueFull):
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, errorResponse{Error: response.GetResponseError().Error()})
	}
	return c.JSON(http.StatusOK, ledPressResponse{
		Command: primary,
		Repeat:  repeat,
	})
}
