package service

import (
	"context"
	"fmt"

	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// Stats 返回网盘用量统计.
func (s *FileService) Stats(ctx context.Context) (_ *types.StatsResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.Stats")
	defer func() { tracing.RecordError(span, err); span.End() }()

	st, err := s.meta.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	return &types.StatsResponse{
		TotalFiles:   st.TotalFiles,
		TotalBytes:   st.TotalBytes,
		ActiveFiles:  st.TotalFiles - st.TrashedFiles,
		ActiveBytes:  st.TotalBytes - st.TrashedBytes,
		StarredFiles: st.StarredFiles,
		TrashedFiles: st.TrashedFiles,
		TrashedBytes: st.TrashedBytes,
	}, nil
}
