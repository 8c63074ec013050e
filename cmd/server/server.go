package main

import (
	"context"

	"github.com/go-logr/logr"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/acquirer"
)

// Engine is the surface of engine.Engine the control service drives.
type Engine interface {
	GetConnectionState() lib.ConnectionState
	GetMirroringState() lib.MirroringState
	MirrorProcessStatus() (lib.ProcessStatus, bool)
	Connect(ctx context.Context, ip, port string) error
	Disconnect(ctx context.Context) error
	CheckConnectivity(ctx context.Context) (bool, error)
	Devices(ctx context.Context) ([]lib.Device, error)
	Launch(ctx context.Context, opts lib.MirrorOptions) error
	LaunchScreenOff(ctx context.Context, opts lib.MirrorOptions) error
	Stop(ctx context.Context) error
	Binaries(ctx context.Context) ([]lib.DetectionResult, error)
	RefreshBinaries()
	EnsureBinaries(ctx context.Context, progress lib.ProgressFunc) ([]acquirer.Result, error)
}

type ControlServiceServer struct {
	apiv1.UnimplementedControlServiceServer
	engine      Engine
	defaultPort string
	log         logr.Logger
}

func NewControlServiceServer(engine Engine, defaultPort string, log logr.Logger) *ControlServiceServer {
	return &ControlServiceServer{
		engine:      engine,
		defaultPort: defaultPort,
		log:         log.WithName("control"),
	}
}
