package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/util"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaster struct {
	mu       sync.Mutex
	healthy  bool
	fail     error
	commands []domain.DeviceCommand
}

func (m *fakeMaster) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		m.mu.Lock()
		defer m.mu.Unlock()
		ctx.Respond(domain.ActorHealthResponse{Id: domain.ACTOR_ID_MASTER, Healthy: m.healthy})
	case domain.DeviceCommandRequest:
		m.mu.Lock()
		m.commands = append(m.commands, msg.Command)
		fail := m.fail
		m.mu.Unlock()
		ctx.Respond(domain.DeviceCommandResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: fail},
		})
	}
}

func (m *fakeMaster) received() []domain.DeviceCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DeviceCommand(nil), m.commands...)
}

func newTestHandler(t *testing.T, master *fakeMaster) (http.Handler, *actor.ActorSystem) {
	as := actor.NewActorSystem()
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return master }))
	cfg := util.LoadTestConfig()
	return newServer(cfg, as.Root, pid).RegisterRoutes(), as
}

func TestHealthCheckHandler(t *testing.T) {
	assert := assert.New(t)

	master := &fakeMaster{healthy: true}
	handler, as := newTestHandler(t, master)
	defer as.Shutdown()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(http.StatusOK, rec.Code)
	assert.Equal("health_check: OK", rec.Body.String())

	master.mu.Lock()
	master.healthy = false
	master.mu.Unlock()

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(http.StatusServiceUnavailable, rec.Code)
}

func TestLEDPressHandler(t *testing.T) {
	assert := assert.New(t)

	master := &fakeMaster{healthy: true}
	handler, as := newTestHandler(t, master)
	defer as.Shutdown()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/led/w2?repeat=3", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body ledPressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(ledPressResponse{Command: "PINK2", Repeat: 3}, body)

	commands := master.received()
	if assert.Len(commands, 1) {
		assert.Equal(domain.LEDPressCommand{Names: []string{"PINK2"}, Repeat: 3}, commands[0])
	}
}

func TestLEDPressHandlerErrors(t *testing.T) {
	assert := assert.New(t)

	master := &fakeMaster{healthy: true}
	handler, as := newTestHandler(t, master)
	defer as.Shutdown()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/led/LASER", nil))
	assert.Equal(http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/led/POWER?repeat=abc", nil))
	assert.Equal(http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/led/POWER?repeat=99", nil))
	assert.Equal(http.StatusBadRequest, rec.Code)

	assert.Empty(master.received())
}

func TestLEDPressHandlerCommandErrors(t *testing.T) {
	assert := assert.New(t)

	master := &fakeMaster{healthy: true}
	handler, as := newTestHandler(t, master)
	defer as.Shutdown()

	for _, tc := range []struct {
		err    error
		status int
	}{
		{domain.ErrCommandQueueFull, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: SendIRCodes", devapi.ErrTransport), http.StatusBadGateway},
	} {
		master.mu.Lock()
		master.fail = tc.err
		master.mu.Unlock()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/led/POWER", nil))
		assert.Equal(tc.status, rec.Code, tc.err.Error())
	}
}
