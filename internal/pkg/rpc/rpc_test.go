package rpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type echoRequest struct {
	Text string `json:"text"`
}

type echoResponse struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type echoServer interface {
	Echo(ctx context.Context, req *echoRequest) (*echoResponse, error)
}

type echo struct{}

func (echo) Echo(_ context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Text == "" {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	return &echoResponse{Text: req.Text, Count: len(req.Text)}, nil
}

var echoServiceDesc = grpc.ServiceDesc{
	ServiceName: "test.Echo",
	HandlerType: (*echoServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Echo",
			Handler:    Unary("/test.Echo/Echo", echoServer.Echo),
		},
	},
	Streams: []grpc.StreamDesc{},
}

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := NewServer(zap.NewNop())
	server.RegisterService(&echoServiceDesc, echo{})
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestCodec_Registered(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)
	assert.Equal(t, "json", codec.Name())
}

func TestCodec_PlainStruct(t *testing.T) {
	codec := jsonCodec{}

	data, err := codec.Marshal(&echoResponse{Text: "hi", Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi","count":2}`, string(data))

	var out echoResponse
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, echoResponse{Text: "hi", Count: 2}, out)
}

func TestCodec_ProtoMessage(t *testing.T) {
	codec := jsonCodec{}

	data, err := codec.Marshal(wrapperspb.String("budget"))
	require.NoError(t, err)
	assert.JSONEq(t, `"budget"`, string(data))

	out := &wrapperspb.StringValue{}
	require.NoError(t, codec.Unmarshal(data, out))
	assert.Equal(t, "budget", out.GetValue())
}

func TestUnary_RoundTrip(t *testing.T) {
	conn := startServer(t)

	resp, err := Invoke[echoResponse](context.Background(), conn, "/test.Echo/Echo", &echoRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, 5, resp.Count)
}

func TestUnary_StatusPreserved(t *testing.T) {
	conn := startServer(t)

	_, err := Invoke[echoResponse](context.Background(), conn, "/test.Echo/Echo", &echoRequest{})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCheckHealth(t *testing.T) {
	conn := startServer(t)

	require.NoError(t, CheckHealth(context.Background(), conn))
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	interceptor := LoggingInterceptor(zap.NewNop())
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Echo/Echo"}
	handlerErr := errors.New("boom")

	resp, err := interceptor(context.Background(), "req", info, func(context.Context, interface{}) (interface{}, error) {
		return "resp", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "resp", resp)

	_, err = interceptor(context.Background(), "req", info, func(context.Context, interface{}) (interface{}, error) {
		return nil, handlerErr
	})
	assert.ErrorIs(t, err, handlerErr)
}
