package main

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
)

func (s *ControlServiceServer) state() apiv1.State {
	st := apiv1.State{
		Connection: s.engine.GetConnectionState(),
		Mirroring:  s.engine.GetMirroringState(),
	}
	if ps, ok := s.engine.MirrorProcessStatus(); ok {
		st.MirrorProcess = &ps
	}
	return st
}

func (s *ControlServiceServer) stateResponse() (*structpb.Struct, error) {
	resp, err := s.state().Struct()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding state: %v", err)
	}
	return resp, nil
}
