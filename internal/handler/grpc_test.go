package handler

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/proto"
	"github.com/MikhailRaia/shortlink/internal/service"
)

func newGRPCClient(t *testing.T, svc URLService) proto.ShortenerClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	proto.RegisterShortenerServer(server, NewShortenerGRPCServer(svc))

	go func() {
		_ = server.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		server.Stop()
	})

	return proto.NewShortenerClient(conn)
}

func TestShortenerGRPCServer_Shorten(t *testing.T) {
	var got model.ShortenRequest
	client := newGRPCClient(t, &mockURLService{shortenFunc: func(req model.ShortenRequest) (*service.ShortenResult, error) {
		got = req
		return &service.ShortenResult{Code: "abc123", ShortURL: "http://localhost:8080/abc123", Reused: true}, nil
	}})

	in, err := proto.ToStruct(model.ShortenRequest{
		URL:           "https://example.com",
		CustomCode:    "abc123",
		ExpiresInDays: model.NewDays(3),
	})
	require.NoError(t, err)

	out, err := client.Shorten(context.Background(), in)
	require.NoError(t, err)

	var resp model.ShortenResponse
	require.NoError(t, proto.FromStruct(out, &resp))
	assert.Equal(t, model.ShortenResponse{ShortURL: "http://localhost:8080/abc123", ShortCode: "abc123", Reused: true}, resp)

	assert.Equal(t, "https://example.com", got.URL)
	assert.Equal(t, "abc123", got.CustomCode)
	require.NotNil(t, got.ExpiresInDays)
	assert.Equal(t, 3, got.ExpiresInDays.Value)
}

func TestShortenerGRPCServer_Shorten_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
		wantMsg  string
	}{
		{name: "validation", err: &service.ValidationError{Message: "Missing 'url' field"}, wantCode: codes.InvalidArgument, wantMsg: "Missing 'url' field"},
		{name: "taken", err: service.ErrCodeTaken, wantCode: codes.AlreadyExists, wantMsg: "custom code is already taken"},
		{name: "storage", err: errors.New("disk full"), wantCode: codes.Internal, wantMsg: "failed to store link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newGRPCClient(t, &mockURLService{shortenFunc: func(model.ShortenRequest) (*service.ShortenResult, error) {
				return nil, tt.err
			}})

			_, err := client.Shorten(context.Background(), &structpb.Struct{})
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}

func TestShortenerGRPCServer_Shorten_InvalidMessage(t *testing.T) {
	client := newGRPCClient(t, &mockURLService{})

	in, err := structpb.NewStruct(map[string]any{"url": 42})
	require.NoError(t, err)

	_, err = client.Shorten(context.Background(), in)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestShortenerGRPCServer_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		url      string
		err      error
		wantCode codes.Code
	}{
		{name: "found", code: "abc123", url: "https://example.com", wantCode: codes.OK},
		{name: "empty code", code: "", wantCode: codes.InvalidArgument},
		{name: "not found", code: "nope", err: service.ErrNotFound, wantCode: codes.NotFound},
		{name: "expired", code: "old", err: service.ErrExpired, wantCode: codes.FailedPrecondition},
		{name: "storage", code: "abc123", err: errors.New("timeout"), wantCode: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newGRPCClient(t, &mockURLService{resolveFunc: func(code string) (string, error) {
				return tt.url, tt.err
			}})

			out, err := client.Resolve(context.Background(), wrapperspb.String(tt.code))
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, tt.url, out.GetValue())
			}
		})
	}
}

func TestShortenerGRPCServer_Health(t *testing.T) {
	pingErr := error(nil)
	client := newGRPCClient(t, &mockURLService{pingFunc: func() error { return pingErr }})

	out, err := client.Health(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.GetFields()["status"].GetStringValue())
	assert.Equal(t, "connected", out.GetFields()["db"].GetStringValue())

	pingErr = errors.New("down")
	_, err = client.Health(context.Background(), &emptypb.Empty{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
