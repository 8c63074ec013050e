package main

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

func (s *ControlServiceServer) GetState(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.stateResponse()
}
