package main

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
)

func (s *ControlServiceServer) Connect(ctx context.Context, request *structpb.Struct) (*structpb.Struct, error) {
	req := apiv1.ParseConnectRequest(request)
	if req.Port == "" {
		req.Port = s.defaultPort
	}
	if err := s.engine.Connect(ctx, req.IP, req.Port); err != nil {
		return nil, apiv1.StatusError(err)
	}
	return s.stateResponse()
}

func (s *ControlServiceServer) Disconnect(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.engine.Disconnect(ctx); err != nil {
		return nil, apiv1.StatusError(err)
	}
	return s.stateResponse()
}

func (s *ControlServiceServer) CheckConnectivity(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	connected, err := s.engine.CheckConnectivity(ctx)
	if err != nil {
		return nil, apiv1.StatusError(err)
	}
	resp, err := apiv1.CheckResponse{Connected: connected, State: s.state()}.Struct()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding state: %v", err)
	}
	return resp, nil
}

func (s *ControlServiceServer) Devices(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	devices, err := s.engine.Devices(ctx)
	if err != nil {
		return nil, apiv1.StatusError(err)
	}
	resp, err := apiv1.DevicesStruct(devices)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding devices: %v", err)
	}
	return resp, nil
}
