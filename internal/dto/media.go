package dto

// ── 媒体上传 DTO ──

// MediaResponse 上传结果（流水线只保存 URL）
type MediaResponse struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
