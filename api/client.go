// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/relayer"
	"github.com/luxfi/gateway/utils"
	"go.uber.org/zap"
)

const DefaultRequestTimeout = 30 * time.Second

var (
	_ relayer.Submitter   = (*Client)(nil)
	_ relayer.EventSource = (*EventStream)(nil)
)

// Client talks to a Server.
type Client struct {
	baseURL string
	// bearer token sent with every request when set
	token  string
	http   *http.Client
	dialer *websocket.Dialer
}

// NewClient creates a client for the server at baseURL. An empty token
// makes anonymous requests.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultRequestTimeout},
		dialer:  websocket.DefaultDialer,
	}
}

func (c *Client) SendMessage(
	ctx context.Context,
	destinationChainID gateway.ChainID,
	receiver []byte,
	payload []byte,
) (*SendMessageResponse, error) {
	var resp SendMessageResponse
	err := c.do(ctx, http.MethodPost, MessagesPath, &SendMessageRequest{
		DestinationChainID: uint32(destinationChainID),
		Receiver:           utils.EncodeHexString(receiver),
		Payload:            utils.EncodeHexString(payload),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit executes a relayed packet on the server's gateway.
func (c *Client) Submit(ctx context.Context, p *gateway.Packet) error {
	return c.do(ctx, http.MethodPost, ExecutePath, &ExecuteMessageRequest{
		SourceChainID: uint32(p.SourceChainID),
		SourceGateway: utils.EncodeHexString(p.SourceGateway),
		Receiver:      utils.EncodeHexString(p.Receiver),
		Nonce:         p.Nonce,
		Payload:       utils.EncodeHexString(p.Payload),
		Signature:     utils.EncodeHexString(p.Signature),
	}, nil)
}

func (c *Client) SetSupportedChain(ctx context.Context, chainID gateway.ChainID, supported bool) error {
	return c.do(ctx, http.MethodPut, chainPath(chainID), &SetSupportedChainRequest{
		Supported: supported,
	}, nil)
}

func (c *Client) IsSupported(ctx context.Context, chainID gateway.ChainID) (bool, error) {
	var resp ChainResponse
	if err := c.do(ctx, http.MethodGet, chainPath(chainID), nil, &resp); err != nil {
		return false, err
	}
	return resp.Supported, nil
}

func (c *Client) Nonce(ctx context.Context) (uint64, error) {
	var resp NonceResponse
	if err := c.do(ctx, http.MethodGet, NoncePath, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Nonce, nil
}

func (c *Client) Message(ctx context.Context, key string) ([]byte, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodGet, MessagesPath+"/"+url.PathEscape(key), nil, &resp); err != nil {
		return nil, err
	}
	return utils.DecodeHexString(resp.Message)
}

func (c *Client) IsExecuted(ctx context.Context, key string) (bool, error) {
	var resp ExecutedResponse
	if err := c.do(ctx, http.MethodGet, ExecutedPath+"/"+url.PathEscape(key), nil, &resp); err != nil {
		return false, err
	}
	return resp.Executed, nil
}

func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	var resp InfoResponse
	if err := c.do(ctx, http.MethodGet, InfoPath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events streams the server's SentEvents from nonce from on. The channel is
// closed when the connection ends or ctx is done.
func (c *Client) Events(ctx context.Context, logger *zap.Logger, from uint64) (<-chan gateway.SentEvent, error) {
	u, err := url.Parse(c.baseURL + EventsPath)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set(FromParam, strconv.FormatUint(from, 10))
	u.RawQuery = q.Encode()

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}

	events := make(chan gateway.SentEvent)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var ev gateway.SentEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					logger.Warn("Event stream ended", zap.Error(err))
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// EventStream adapts a Client to a relayer event source that resumes from
// the nonce next returns at subscription time.
type EventStream struct {
	client *Client
	logger *zap.Logger
	next   func() uint64
}

func NewEventStream(client *Client, logger *zap.Logger, next func() uint64) *EventStream {
	return &EventStream{
		client: client,
		logger: logger,
		next:   next,
	}
}

func (s *EventStream) Subscribe(ctx context.Context) (<-chan gateway.SentEvent, error) {
	return s.client.Events(ctx, s.logger, s.next())
}

func chainPath(chainID gateway.ChainID) string {
	return ChainsPath + "/" + strconv.FormatUint(uint64(chainID), 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", bearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

// decodeError turns an error response back into the error the server
// reported, so callers can match gateway sentinels with errors.Is.
func decodeError(resp *http.Response) error {
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if sentinel, ok := gateway.ErrorForCode(body.Code); ok {
		return fmt.Errorf("%w: %s", sentinel, body.Message)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, body.Message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", gateway.ErrUnauthorized, body.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", gateway.ErrMessageNotFound, body.Message)
	default:
		return fmt.Errorf("request failed with status %d: %w", resp.StatusCode, errors.New(body.Message))
	}
}
