package zmq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kvstore/internal/application/service"
	"kvstore/internal/domain"
	"kvstore/internal/platform/config"

	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	SET = "SET"
	GET = "GET"
)

const (
	numWorkers = 4
	queueSize  = 1024
)

// ZmqApi serves JSON requests on a REP socket. The listener hands each
// request to the worker pool and waits for its reply, keeping the REP
// recv/send alternation intact.
type ZmqApi struct {
	socket     zmq4.Socket
	config     config.Config
	services   *Services
	logger     *zap.SugaredLogger
	ctx        context.Context
	cancel     context.CancelFunc
	workerPool chan Job
}

type Job struct {
	Request  []byte
	Response chan<- []byte
}

type Services struct {
	get *service.GetEntryService
	set *service.SaveEntryService
}

func NewZmqApi(get *service.GetEntryService, set *service.SaveEntryService,
	conf config.Config, logger *zap.SugaredLogger) *ZmqApi {

	ctx, cancel := context.WithCancel(context.Background())
	return &ZmqApi{
		socket: zmq4.NewRep(ctx),
		config: conf,
		services: &Services{
			get: get,
			set: set,
		},
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		workerPool: make(chan Job, queueSize),
	}
}

// Listen binds the socket and serves until Close is called.
func (z *ZmqApi) Listen() error {
	address := fmt.Sprintf("tcp://*:%d", z.config.ZmqApiPort)
	if err := z.socket.Listen(address); err != nil {
		return fmt.Errorf("zmq listen on %s: %w", address, err)
	}

	for i := 0; i < numWorkers; i++ {
		go z.workerRoutine(i)
	}
	z.logger.Infow("ZMQ API listening", "address", address, "workers", numWorkers)

	for {
		msg, err := z.socket.Recv()
		if err != nil {
			if z.ctx.Err() != nil || errors.Is(err, zmq4.ErrClosedConn) {
				z.logger.Info("ZMQ API listener stopped")
				return nil
			}
			z.logger.Warnw("ZMQ recv error", "error", err)
			continue
		}

		respChan := make(chan []byte, 1)
		select {
		case z.workerPool <- Job{Request: msg.Bytes(), Response: respChan}:
		case <-z.ctx.Done():
			return nil
		}

		var payload []byte
		select {
		case payload = <-respChan:
		case <-z.ctx.Done():
			return nil
		}
		if err := z.socket.Send(zmq4.NewMsg(payload)); err != nil {
			z.logger.Warnw("ZMQ send error", "error", err)
		}
	}
}

func (z *ZmqApi) workerRoutine(id int) {
	defer z.logger.Debugw("ZMQ worker stopped", "worker", id)

	for {
		select {
		case job := <-z.workerPool:
			job.Response <- z.handleMessage(job.Request)
		case <-z.ctx.Done():
			return
		}
	}
}

func (z *ZmqApi) handleMessage(payload []byte) []byte {
	var req ApiRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		z.logger.Warnw("ZMQ unmarshal error", "error", err)
		return z.marshal(ApiResponse{
			RequestId: uuid.NewString(),
			Error:     fmt.Sprintf("%v: malformed request", domain.ErrProtocol),
		})
	}
	return z.marshal(z.processRequest(&req))
}

func (z *ZmqApi) processRequest(req *ApiRequest) ApiResponse {
	requestId := uuid.NewString()

	switch strings.ToUpper(req.Action) {
	case SET:
		if err := domain.ValidateEntry(req.Key, req.Value); err != nil {
			return ApiResponse{RequestId: requestId, Error: err.Error()}
		}
		result := z.services.set.Execute(service.SaveEntryCommand{
			Key:   req.Key,
			Value: req.Value,
		})
		if result.Err != nil {
			return ApiResponse{RequestId: requestId, Error: "write failed"}
		}
		return ApiResponse{
			Entry: EntryResponse{
				Key:   result.Entry.Key(),
				Value: result.Entry.Value(),
			},
			Success:   true,
			RequestId: requestId,
		}

	case GET:
		result := z.services.get.Execute(service.GetEntryQuery{Key: req.Key})
		if result.Err != nil {
			return ApiResponse{RequestId: requestId, Error: "read failed"}
		}
		return ApiResponse{
			Entry: EntryResponse{
				Key:   req.Key,
				Value: result.Entry.Value(),
			},
			Success:   true,
			Found:     result.Found,
			RequestId: requestId,
		}

	default:
		z.logger.Warnw("Unknown ZMQ action", "action", req.Action, "request_id", requestId)
		return ApiResponse{
			RequestId: requestId,
			Error:     fmt.Sprintf("%v: unknown action %q", domain.ErrProtocol, req.Action),
		}
	}
}

func (z *ZmqApi) marshal(response ApiResponse) []byte {
	payload, err := json.Marshal(response)
	if err != nil {
		z.logger.Errorw("ZMQ marshal error", "error", err)
		payload = []byte(`{"success":false}`)
	}
	return payload
}

func (z *ZmqApi) Close() error {
	z.cancel()
	return z.socket.Close()
}
