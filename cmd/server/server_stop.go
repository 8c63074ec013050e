package main

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
)

func (s *ControlServiceServer) Stop(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.engine.Stop(ctx); err != nil {
		return nil, apiv1.StatusError(err)
	}
	return s.stateResponse()
}
