package main

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
)

func (s *ControlServiceServer) Launch(ctx context.Context, request *structpb.Struct) (*structpb.Struct, error) {
	req := apiv1.ParseLaunchRequest(request)
	s.log.Info("launch requested", "options", req.Options)

	var err error
	if req.Options.ScreenOff {
		err = s.engine.LaunchScreenOff(ctx, req.Options)
	} else {
		err = s.engine.Launch(ctx, req.Options)
	}
	if err != nil {
		return nil, apiv1.StatusError(err)
	}
	return s.stateResponse()
}
