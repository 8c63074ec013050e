package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
)

const unixScheme = "unix://"

// GRPCServer encapsulates the gRPC server instance and its listener.
type GRPCServer struct {
	lis net.Listener
	s   *grpc.Server
}

// NewGRPCServer registers the control service and binds address, which is
// either "unix:///path/to.sock" or a "host:port" TCP address. The daemon
// only serves the local operator, so the transport is not encrypted.
func NewGRPCServer(address string, service apiv1.ControlServiceServer, log logr.Logger) (*GRPCServer, error) {
	lis, err := listen(address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return newGRPCServerWithListener(lis, service, log), nil
}

func newGRPCServerWithListener(lis net.Listener, service apiv1.ControlServiceServer, log logr.Logger) *GRPCServer {
	s := grpc.NewServer(grpc.UnaryInterceptor(loggingUnary(log.WithName("grpc"))))
	apiv1.RegisterControlServiceServer(s, service)
	return &GRPCServer{lis: lis, s: s}
}

func listen(address string) (net.Listener, error) {
	if !strings.HasPrefix(address, unixScheme) {
		return net.Listen("tcp", address)
	}

	path := strings.TrimPrefix(address, unixScheme)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	// A socket left behind by a daemon that did not shut down cleanly.
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	lis, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = lis.Close()
		return nil, err
	}
	return lis, nil
}

// Serve starts serving gRPC on the configured listener.
func (g *GRPCServer) Serve() error {
	return g.s.Serve(g.lis)
}

// Addr returns the network address the server is bound to.
func (g *GRPCServer) Addr() net.Addr { return g.lis.Addr() }

// Stop gracefully stops the gRPC server.
func (g *GRPCServer) Stop() { g.s.GracefulStop() }
