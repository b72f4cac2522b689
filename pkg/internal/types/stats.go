package types

// StatsResponse 网盘用量统计.
type StatsResponse struct {
	TotalFiles   int64 `json:"totalFiles"`
	TotalBytes   int64 `json:"totalBytes"`
	ActiveFiles  int64 `json:"activeFiles"`
	ActiveBytes  int64 `json:"activeBytes"`
	StarredFiles int64 `json:"starredFiles"`
	TrashedFiles int64 `json:"trashedFiles"`
	TrashedBytes int64 `json:"trashedBytes"`
}
