package main

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/engine"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/resolver"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/testutil"
)

const fakeBridge = `case "$1" in
  connect)
    case "$2" in
      10.0.0.9:*) echo "failed to connect to '$2': Connection refused"; exit 1 ;;
      *) echo "connected to $2" ;;
    esac ;;
  disconnect) echo "disconnected $2" ;;
  devices) printf 'List of devices attached\n10.0.0.2:5555\tdevice\n' ;;
esac`

const fakeMirror = `echo "INFO: Renderer: opengl"
exec sleep 30`

func startServer(t *testing.T) (apiv1.ControlServiceClient, *engine.Engine) {
	t.Helper()
	testutil.SkipOnWindows(t)

	dir := t.TempDir()
	cfg := testutil.Config{Overrides: map[string]string{
		lib.ToolBridge: testutil.WriteScript(t, dir, "adb", fakeBridge),
		lib.ToolMirror: testutil.WriteScript(t, dir, "scrcpy", fakeMirror),
	}}
	log := testr.New(t)
	eng := engine.New(cfg, &testutil.RecordingLogger{}, log, engine.WithResolverOptions(
		resolver.WithLookPath(func(string) (string, error) { return "", errors.New("not on PATH") }),
		resolver.WithCommonDirs(),
		resolver.WithCacheRoot(filepath.Join(dir, "cache")),
	))

	lis := bufconn.Listen(1 << 20)
	srv := newGRPCServerWithListener(lis, NewControlServiceServer(eng, "5555", log), log)
	go func() { _ = srv.Serve() }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		_ = eng.Cleanup(context.Background())
	})
	return apiv1.NewControlServiceClient(conn), eng
}

func mustStruct(t *testing.T) func(*structpb.Struct, error) *structpb.Struct {
	return func(s *structpb.Struct, err error) *structpb.Struct {
		t.Helper()
		require.NoError(t, err)
		return s
	}
}

func TestControlServiceFlow(t *testing.T) {
	client, eng := startServer(t)
	ctx, cancel := testutil.GetTestContext(t, 20*time.Second)
	defer cancel()

	resp, err := client.GetState(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, apiv1.State{}, apiv1.ParseState(resp))

	// Port falls back to the configured default.
	req := mustStruct(t)(apiv1.ConnectRequest{IP: "10.0.0.2"}.Struct())
	resp, err = client.Connect(ctx, req)
	require.NoError(t, err)
	st := apiv1.ParseState(resp)
	require.True(t, st.Connection.Connected)
	require.Equal(t, "5555", st.Connection.DevicePort)

	resp, err = client.Devices(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, []lib.Device{{Serial: "10.0.0.2:5555", State: "device"}}, apiv1.ParseDevices(resp))

	resp, err = client.CheckConnectivity(ctx, nil)
	require.NoError(t, err)
	require.True(t, apiv1.ParseCheckResponse(resp).Connected)

	launch := mustStruct(t)(apiv1.LaunchRequest{Options: lib.MirrorOptions{MaxSize: 800}}.Struct())
	resp, err = client.Launch(ctx, launch)
	require.NoError(t, err)
	st = apiv1.ParseState(resp)
	require.True(t, st.Mirroring.Running)
	require.Equal(t, "10.0.0.2:5555", st.Mirroring.Options.Serial)
	require.NotNil(t, st.MirrorProcess)
	require.Equal(t, lib.ProcessStateRunning, st.MirrorProcess.State)

	_, err = client.Launch(ctx, launch)
	require.Equal(t, codes.FailedPrecondition, status.Code(err))

	resp, err = client.Stop(ctx, nil)
	require.NoError(t, err)
	require.False(t, apiv1.ParseState(resp).Mirroring.Running)
	require.Zero(t, eng.Len())

	resp, err = client.Disconnect(ctx, nil)
	require.NoError(t, err)
	require.False(t, apiv1.ParseState(resp).Connection.Connected)
}

func TestControlServiceErrorCodes(t *testing.T) {
	client, _ := startServer(t)
	ctx, cancel := testutil.GetTestContext(t, 10*time.Second)
	defer cancel()

	_, err := client.Connect(ctx, mustStruct(t)(apiv1.ConnectRequest{IP: "not-an-ip", Port: "5555"}.Struct()))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Connect(ctx, mustStruct(t)(apiv1.ConnectRequest{IP: "10.0.0.9", Port: "5555"}.Struct()))
	require.Equal(t, codes.Unavailable, status.Code(err))
	require.Contains(t, status.Convert(err).Message(), "Connection refused")

	resp, err := client.GetState(ctx, nil)
	require.NoError(t, err)
	require.Contains(t, apiv1.ParseState(resp).Connection.ConnectionError, "Connection refused")

	_, err = client.Launch(ctx, mustStruct(t)(apiv1.LaunchRequest{Options: lib.MirrorOptions{BitRate: "fast"}}.Struct()))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Binaries(ctx, mustStruct(t)(apiv1.BinariesRequest{Fetch: true}.Struct()))
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestControlServiceBinaries(t *testing.T) {
	client, _ := startServer(t)
	ctx, cancel := testutil.GetTestContext(t, 10*time.Second)
	defer cancel()

	resp, err := client.Binaries(ctx, mustStruct(t)(apiv1.BinariesRequest{Refresh: true}.Struct()))
	require.NoError(t, err)
	results := apiv1.ParseBinaries(resp)
	require.Len(t, results, 2)
	for _, r := range results {
		require.True(t, r.Found)
		require.Equal(t, lib.SourceCustom, r.Source)
	}
}

func TestListenUnixSocket(t *testing.T) {
	testutil.SkipOnWindows(t)
	path := filepath.Join(t.TempDir(), "run", "d.sock")

	lis, err := listen(unixScheme + path)
	require.NoError(t, err)
	require.Equal(t, path, lis.Addr().String())
	require.NoError(t, lis.Close())

	// A stale socket file does not prevent a restart.
	lis, err = listen(unixScheme + path)
	require.NoError(t, err)
	require.NoError(t, lis.Close())
}
