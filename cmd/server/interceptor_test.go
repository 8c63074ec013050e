package main

import (
	"context"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type loggedError struct {
	err error
	msg string
	kv  []any
}

// errorSink keeps Error calls and counts Info calls.
type errorSink struct {
	mu     sync.Mutex
	errors []loggedError
	infos  int
}

func (s *errorSink) Init(logr.RuntimeInfo)          {}
func (s *errorSink) Enabled(int) bool               { return true }
func (s *errorSink) WithValues(...any) logr.LogSink { return s }
func (s *errorSink) WithName(string) logr.LogSink   { return s }

func (s *errorSink) Info(int, string, ...any) {
	s.mu.Lock()
	s.infos++
	s.mu.Unlock()
}

func (s *errorSink) Error(err error, msg string, kv ...any) {
	s.mu.Lock()
	s.errors = append(s.errors, loggedError{err: err, msg: msg, kv: kv})
	s.mu.Unlock()
}

func TestLoggingUnaryRecoversPanic(t *testing.T) {
	sink := &errorSink{}
	interceptor := loggingUnary(logr.New(sink))
	info := &grpc.UnaryServerInfo{FullMethod: "/devmirror.v1.ControlService/Launch"}

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})

	require.Nil(t, resp)
	require.Equal(t, codes.Internal, status.Code(err))
	require.Len(t, sink.errors, 1)
	logged := sink.errors[0]
	require.EqualError(t, logged.err, "handler panicked: boom")
	require.Contains(t, logged.kv, info.FullMethod)
	require.Zero(t, sink.infos)
}

func TestLoggingUnaryPassesThroughErrors(t *testing.T) {
	sink := &errorSink{}
	interceptor := loggingUnary(logr.New(sink))
	info := &grpc.UnaryServerInfo{FullMethod: "/devmirror.v1.ControlService/Connect"}
	want := status.Error(codes.Unavailable, "connection: Connection refused")

	_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, want
	})

	require.Equal(t, want, err)
	require.Empty(t, sink.errors)
	require.Equal(t, 1, sink.infos)
}
