package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// loggingUnary logs every call with its duration and resulting code, and
// turns a handler panic into codes.Internal.
func loggingUnary(log logr.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error(fmt.Errorf("handler panicked: %v", r), "request aborted", "method", info.FullMethod, "stack", string(debug.Stack()))
				resp, err = nil, status.Errorf(codes.Internal, "internal error")
				return
			}
			code := status.Code(err)
			if code == codes.OK {
				log.V(1).Info("request served", "method", info.FullMethod, "duration", time.Since(start))
				return
			}
			log.Info("request failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "error", status.Convert(err).Message())
		}()
		return handler(ctx, req)
	}
}
