package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/proto"
	"github.com/MikhailRaia/shortlink/internal/service"
)

type ShortenerGRPCServer struct {
	proto.UnimplementedShortenerServer
	urlService URLService
}

func NewShortenerGRPCServer(urlService URLService) *ShortenerGRPCServer {
	return &ShortenerGRPCServer{
		urlService: urlService,
	}
}

func (s *ShortenerGRPCServer) Shorten(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var request model.ShortenRequest
	if err := proto.FromStruct(req, &request); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request message")
	}

	result, err := s.urlService.Shorten(ctx, request)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return nil, status.Error(codes.InvalidArgument, validationErr.Message)
		case errors.Is(err, service.ErrCodeTaken):
			return nil, status.Error(codes.AlreadyExists, err.Error())
		default:
			log.Error().Err(err).Str("url", request.URL).Msg("Failed to shorten URL")
			return nil, status.Error(codes.Internal, "failed to store link")
		}
	}

	resp, err := proto.ToStruct(model.ShortenResponse{
		ShortURL:  result.ShortURL,
		ShortCode: result.Code,
		Reused:    result.Reused,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}

	return resp, nil
}

func (s *ShortenerGRPCServer) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}

	originalURL, err := s.urlService.Resolve(ctx, req.GetValue())
	switch {
	case err == nil:
		return wrapperspb.String(originalURL), nil
	case errors.Is(err, service.ErrNotFound):
		return nil, status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrExpired):
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	default:
		return nil, status.Errorf(codes.Internal, "failed to resolve link: %v", err)
	}
}

func (s *ShortenerGRPCServer) Health(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.urlService.Ping(ctx); err != nil {
		return nil, status.Errorf(codes.Unavailable, "storage unavailable: %v", err)
	}

	resp, err := proto.ToStruct(model.HealthResponse{Status: "ok", DB: "connected"})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return resp, nil
}
