package proto

import (
	"context"
	"encoding/json"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/config"
	"github.com/Rogue-Bear-Innovations/websites/internal/models"
	"github.com/Rogue-Bear-Innovations/websites/internal/service"
)

type (
	WebsitesServerImpl struct {
		websites *service.Websites
		logger   *zap.SugaredLogger
		debug    bool
	}

	listReq struct {
		UserID string `json:"userId"`
	}

	idReq struct {
		ID string `json:"id"`
	}

	updateReq struct {
		ID string `json:"id"`
		models.UpdateWebsiteReq
	}
)

var Module = fx.Provide(
	NewGRPCServer,
)

func NewWebsitesServerImpl(websites *service.Websites, logger *zap.SugaredLogger, debug bool) *WebsitesServerImpl {
	return &WebsitesServerImpl{
		websites: websites,
		logger:   logger,
		debug:    debug,
	}
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, websites *service.Websites, logger *zap.SugaredLogger) *WebsitesServerImpl {
	instance := NewWebsitesServerImpl(websites, logger, cfg.Debug())

	grpcServer := grpc.NewServer()
	RegisterWebsitesServer(grpcServer, instance)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr())
			if err != nil {
				return errors.Wrap(err, "listen grpc")
			}
			go func() {
				logger.Infof("Starting GRPC server on %s.", lis.Addr())
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("GRPC server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}

func (s *WebsitesServerImpl) List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := listReq{}
	if err := decode(in, &req); err != nil {
		return nil, s.fail(err)
	}

	websites, err := s.websites.List(ctx, req.UserID)
	if err != nil {
		return nil, s.fail(err)
	}
	return encode(service.Success(websites, ""))
}

func (s *WebsitesServerImpl) Create(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := models.CreateWebsiteReq{}
	if err := decode(in, &req); err != nil {
		return nil, s.fail(err)
	}

	w, err := s.websites.Create(ctx, req)
	if err != nil {
		return nil, s.fail(err)
	}
	return encode(service.Success(w, service.MsgCreated))
}

func (s *WebsitesServerImpl) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := updateReq{}
	if err := decode(in, &req); err != nil {
		return nil, s.fail(err)
	}

	w, err := s.websites.Update(ctx, req.ID, req.UpdateWebsiteReq)
	if err != nil {
		return nil, s.fail(err)
	}
	return encode(service.Success(w, service.MsgUpdated))
}

func (s *WebsitesServerImpl) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := idReq{}
	if err := decode(in, &req); err != nil {
		return nil, s.fail(err)
	}

	if err := s.websites.Delete(ctx, req.ID); err != nil {
		return nil, s.fail(err)
	}
	return encode(service.Success(nil, service.MsgDeleted))
}

func (s *WebsitesServerImpl) fail(err error) error {
	code := StatusCode(apperr.KindOf(err))
	_, env := service.Failure(err, s.debug)
	if code == codes.Internal || code == codes.Unavailable {
		s.logger.Errorw("grpc request failed", "error", err)
	}

	msg := env.Error
	if env.Details != "" {
		msg += ": " + env.Details
	}
	return status.Error(code, msg)
}

// StatusCode maps an error kind to the gRPC status it is reported with.
func StatusCode(kind apperr.Kind) codes.Code {
	switch kind {
	case apperr.KindInvalidRequest, apperr.KindValidation:
		return codes.InvalidArgument
	case apperr.KindConflict:
		return codes.AlreadyExists
	case apperr.KindNotFound:
		return codes.NotFound
	case apperr.KindConnection:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func decode(in *structpb.Struct, v interface{}) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return apperr.Internal("Failed to read request", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		e := apperr.InvalidRequest("Invalid request body")
		e.Err = err
		return e
	}
	return nil
}

func encode(env models.Envelope) (*structpb.Struct, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
