// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api serves a gateway over HTTP: the three entry points, read-only
// queries, a websocket stream of outbound messages, health and metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/host"
	"github.com/luxfi/gateway/precompile"
	"github.com/luxfi/gateway/utils"
	"github.com/luxfi/geth/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	MessagesPath = "/v1/messages"
	ExecutePath  = "/v1/execute"
	ChainsPath   = "/v1/chains"
	NoncePath    = "/v1/nonce"
	ExecutedPath = "/v1/executed"
	InfoPath     = "/v1/info"
	EventsPath   = "/v1/events"
	HealthPath   = "/health"
	MetricsPath  = "/metrics"

	// query parameter of EventsPath naming the first nonce to stream
	FromParam = "from"

	maxRequestBodySize = 2 * gateway.MaxPacketSize
	writeWait          = 10 * time.Second
)

var errBadRequest = errors.New("bad request")

// Server routes HTTP requests to a gateway deployed on a host. Mutating
// requests go through the host so they are serialized with every other
// contract call. Sending and changing the allow-list need a bearer token;
// executing is gated by the relayer signature and may be anonymous.
type Server struct {
	logger      *zap.Logger
	credentials *Credentials
	gateway     *gateway.Gateway
	host        *host.Host
	contract    common.Hash
	events      *EventLog
	metrics     *Metrics
	gatherer    prometheus.Gatherer
	upgrader    websocket.Upgrader
}

func NewServer(
	logger *zap.Logger,
	credentials *Credentials,
	g *gateway.Gateway,
	h *host.Host,
	contract common.Hash,
	events *EventLog,
	metrics *Metrics,
	gatherer prometheus.Gatherer,
) *Server {
	return &Server{
		logger:      logger,
		credentials: credentials,
		gateway:     g,
		host:        h,
		contract:    contract,
		events:      events,
		metrics:     metrics,
		gatherer:    gatherer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(MessagesPath, s.instrument("send_message", s.handleSendMessage)).Methods(http.MethodPost)
	r.HandleFunc(MessagesPath+"/{key}", s.instrument("get_message", s.handleGetMessage)).Methods(http.MethodGet)
	r.HandleFunc(ExecutePath, s.instrument("execute_message", s.handleExecuteMessage)).Methods(http.MethodPost)
	r.HandleFunc(ChainsPath+"/{id:[0-9]+}", s.instrument("set_supported_chain", s.handleSetSupportedChain)).Methods(http.MethodPut)
	r.HandleFunc(ChainsPath+"/{id:[0-9]+}", s.instrument("is_supported", s.handleIsSupported)).Methods(http.MethodGet)
	r.HandleFunc(NoncePath, s.instrument("nonce", s.handleNonce)).Methods(http.MethodGet)
	r.HandleFunc(ExecutedPath+"/{key}", s.instrument("is_executed", s.handleIsExecuted)).Methods(http.MethodGet)
	r.HandleFunc(InfoPath, s.instrument("info", s.handleInfo)).Methods(http.MethodGet)
	r.HandleFunc(EventsPath, s.handleEvents).Methods(http.MethodGet)

	r.Handle(HealthPath, health.NewHandler(s.healthChecker()))
	r.Handle(MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) healthChecker() health.Checker {
	return health.NewChecker(
		health.WithCheck(health.Check{
			Name: "gateway-state",
			Check: func(ctx context.Context) error {
				_, err := s.gateway.Nonce(ctx)
				return err
			},
		}),
	)
}

// instrument records the status and latency of every request to route.
func (s *Server) instrument(route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		handler(rec, r)
		s.metrics.requestCount.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.requestLatencyMS.WithLabelValues(route).Set(float64(time.Since(startTime).Milliseconds()))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	caller, err := s.credentials.caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: could not decode request body: %w", errBadRequest, err))
		return
	}
	receiver, err := decodeField("receiver", req.Receiver)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payload, err := decodeField("payload", req.Payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	args, err := host.EncodeArgs(&precompile.SendMessageArgs{
		DstChainID: req.DestinationChainID,
		Receiver:   receiver,
		Payload:    payload,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	canonical, err := s.host.Call(r.Context(), &host.Call{
		Caller:     caller,
		Contract:   s.contract,
		EntryPoint: gateway.EntryPointSendMessage,
		Args:       args,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	msg, err := gateway.ParseMessage(canonical, common.HashLength, len(receiver))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &SendMessageResponse{
		Message: utils.EncodeHexString(canonical),
		Key:     gateway.MessageKey(canonical),
		Nonce:   msg.Nonce,
	})
}

func (s *Server) handleExecuteMessage(w http.ResponseWriter, r *http.Request) {
	// anonymous submissions execute as the zero identity
	caller, _, err := s.credentials.Authenticate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req ExecuteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: could not decode request body: %w", errBadRequest, err))
		return
	}
	args := precompile.ExecuteMessageArgs{
		SrcChainID: req.SourceChainID,
		Nonce:      req.Nonce,
	}
	fields := []struct {
		name  string
		value string
		dst   *[]byte
	}{
		{"source-gateway", req.SourceGateway, &args.SrcGateway},
		{"receiver", req.Receiver, &args.Receiver},
		{"payload", req.Payload, &args.Payload},
		{"signature", req.Signature, &args.Signature},
	}
	for _, f := range fields {
		if *f.dst, err = decodeField(f.name, f.value); err != nil {
			s.writeError(w, err)
			return
		}
	}
	encoded, err := host.EncodeArgs(&args)
	if err != nil {
		s.writeError(w, err)
		return
	}

	_, err = s.host.Call(r.Context(), &host.Call{
		Caller:     caller,
		Contract:   s.contract,
		EntryPoint: gateway.EntryPointExecuteMessage,
		Args:       encoded,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	msg := gateway.NewMessage(
		gateway.ChainID(args.SrcChainID),
		s.gateway.LocalChainID(),
		args.SrcGateway,
		args.Receiver,
		args.Nonce,
		args.Payload,
	)
	s.writeJSON(w, http.StatusOK, &ExecuteMessageResponse{Key: msg.Key()})
}

func (s *Server) handleSetSupportedChain(w http.ResponseWriter, r *http.Request) {
	caller, err := s.credentials.caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	chainID, err := chainIDVar(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req SetSupportedChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: could not decode request body: %w", errBadRequest, err))
		return
	}
	args, err := host.EncodeArgs(&precompile.SetSupportedChainArgs{
		ChainID:   uint32(chainID),
		Supported: req.Supported,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	_, err = s.host.Call(r.Context(), &host.Call{
		Caller:     caller,
		Contract:   s.contract,
		EntryPoint: gateway.EntryPointSetSupportedChain,
		Args:       args,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &ChainResponse{
		ChainID:   uint32(chainID),
		Supported: req.Supported,
	})
}

func (s *Server) handleIsSupported(w http.ResponseWriter, r *http.Request) {
	chainID, err := chainIDVar(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	supported, err := s.gateway.IsSupported(r.Context(), chainID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &ChainResponse{
		ChainID:   uint32(chainID),
		Supported: supported,
	})
}

func (s *Server) handleNonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := s.gateway.Nonce(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &NonceResponse{Nonce: nonce})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	message, err := s.gateway.Message(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &MessageResponse{
		Key:     key,
		Message: utils.EncodeHexString(message),
	})
}

func (s *Server) handleIsExecuted(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	executed, err := s.gateway.IsExecuted(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &ExecutedResponse{
		Key:      key,
		Executed: executed,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, &InfoResponse{
		LocalChainID:     uint32(s.gateway.LocalChainID()),
		Scheme:           string(s.gateway.Scheme()),
		RelayerPublicKey: utils.EncodeHexString(s.gateway.RelayerPublicKey()),
	})
}

// handleEvents upgrades to a websocket and streams SentEvents as JSON, first
// the recorded ones from the requested nonce on, then live ones.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var from uint64
	if v := r.URL.Query().Get(FromParam); v != "" {
		var err error
		from, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: invalid %s: %w", errBadRequest, FromParam, err))
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		s.logger.Debug("Failed to upgrade event stream", zap.Error(err))
		return
	}
	defer conn.Close()

	backlog, live, unsubscribe := s.events.Subscribe(from, 0)
	defer unsubscribe()
	s.logger.Debug(
		"Opened event stream",
		zap.Uint64("from", from),
		zap.Int("backlog", len(backlog)),
	)

	// the client never writes; reading detects when it goes away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(ev gateway.SentEvent) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(&ev)
	}
	for _, ev := range backlog {
		if err := write(ev); err != nil {
			return
		}
	}
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-live:
			if !ok {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "event stream closed"),
					time.Now().Add(writeWait),
				)
				return
			}
			if ev.Nonce < from {
				continue
			}
			if err := write(ev); err != nil {
				s.logger.Debug("Failed to write event", zap.Error(err))
				return
			}
		}
	}
}

func chainIDVar(r *http.Request) (gateway.ChainID, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid chain id: %w", errBadRequest, err)
	}
	return gateway.ChainID(id), nil
}

func decodeField(name, value string) ([]byte, error) {
	b, err := utils.DecodeHexString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode %s: %w", errBadRequest, name, err)
	}
	return b, nil
}

func statusFor(err error) int {
	if code, ok := gateway.ErrorCode(err); ok {
		switch code {
		case gateway.CodeUnsupportedChain, gateway.CodeInvalidReceiver, gateway.CodeDispatchFailed:
			return http.StatusUnprocessableEntity
		case gateway.CodeAlreadyExecuted:
			return http.StatusConflict
		case gateway.CodeInvalidSignature:
			return http.StatusUnauthorized
		default:
			return http.StatusInternalServerError
		}
	}
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, gateway.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, gateway.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, gateway.ErrMessageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code, _ := gateway.ErrorCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	} else {
		s.logger.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	s.writeJSON(w, status, &ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		msg := "Error marshalling JSON response"
		s.logger.Error(msg, zap.Error(err))
		resp = []byte(msg)
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(resp); err != nil {
		s.logger.Error("Error writing response", zap.Error(err))
	}
}
