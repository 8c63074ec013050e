package main

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

func (s *ControlServiceServer) Binaries(ctx context.Context, request *structpb.Struct) (*structpb.Struct, error) {
	req := apiv1.ParseBinariesRequest(request)

	if req.Refresh {
		s.engine.RefreshBinaries()
	}
	if req.Fetch {
		_, err := s.engine.EnsureBinaries(ctx, func(p lib.Progress) {
			s.log.V(1).Info("download progress", "tool", p.Tool, "downloaded", p.Downloaded, "total", p.Total)
		})
		if err != nil {
			return nil, apiv1.StatusError(err)
		}
	}

	results, err := s.engine.Binaries(ctx)
	if err != nil {
		return nil, apiv1.StatusError(err)
	}
	resp, err := apiv1.BinariesStruct(results)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding binaries: %v", err)
	}
	return resp, nil
}
