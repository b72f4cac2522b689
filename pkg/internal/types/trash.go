package types

// PurgeFailure 批量彻底删除中失败的一项.
type PurgeFailure struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// PurgeReport 批量彻底删除结果，失败项不会中断其余删除.
type PurgeReport struct {
	Purged int            `json:"purged"`
	Failed []PurgeFailure `json:"failed"`
}
