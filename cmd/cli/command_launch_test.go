package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLaunchError(t *testing.T) {
	err := launchError(status.Error(codes.FailedPrecondition, "process: mirroring is already running"))
	require.ErrorIs(t, err, errAlreadyRunning)

	err = launchError(status.Error(codes.InvalidArgument, "validation: bit rate must look like 8M"))
	require.EqualError(t, err, "validation: bit rate must look like 8M")

	plain := errors.New("dial failed")
	require.Equal(t, plain, launchError(plain))
}
