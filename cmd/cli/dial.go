package main

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

func dial(address string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("could not reach daemon at %s: %w", address, err)
	}
	return conn, nil
}

func grpcCode(err error) codes.Code {
	st, ok := status.FromError(err)
	if !ok {
		return codes.Unknown
	}
	return st.Code()
}

// describe returns the daemon's message without the gRPC prefix.
func describe(err error) error {
	if st, ok := status.FromError(err); ok {
		if st.Code() == codes.Unavailable && st.Message() == "" {
			return fmt.Errorf("daemon unavailable")
		}
		return fmt.Errorf("%s", st.Message())
	}
	return err
}
