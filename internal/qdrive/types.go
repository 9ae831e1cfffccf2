package qdrive

type RespBase[T any] struct {
	XTraceID string `json:"x-traceID"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Data     T      `json:"data"`
}

type FileInfo struct {
	FileID      string `json:"fileID"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ParentID    string `json:"parentID"`
	Description string `json:"description"`
	CreateTime  int64  `json:"createTime"`
	UpdateTime  int64  `json:"updateTime"`
	Trashed     bool   `json:"trashed"`
	Etag        string `json:"etag"`
	Sha1        string `json:"sha1"`
	Version     int    `json:"version"`
}

type UpdateFileRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parentID,omitempty"`
}

type LockRequest struct {
	ExpiresAt       string `json:"expiresAt,omitempty"`
	PreventDownload bool   `json:"preventDownload"`
}

type LockInfo struct {
	FileID          string `json:"fileID"`
	LockedBy        string `json:"lockedBy"`
	ExpiresAt       string `json:"expiresAt"`
	PreventDownload bool   `json:"preventDownload"`
}

type SharedLinkRequest struct {
	Access     string `json:"access"` // open / company / collaborators
	Password   string `json:"password,omitempty"`
	UnsharedAt string `json:"unsharedAt,omitempty"`
}

type SharedLink struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	Access      string `json:"access"`
	UnsharedAt  string `json:"unsharedAt"`
}

type DownloadInfo struct {
	FileID      string `json:"fileID"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	DownloadURL string `json:"downloadUrl"`
	ExpireTime  int64  `json:"expireTime"`
}

type UploadSession struct {
	SessionID  string `json:"sessionID"`
	PartSize   int64  `json:"partSize"`
	TotalParts int    `json:"totalParts"`
}

type UploadPart struct {
	PartNumber int    `json:"partNumber"`
	Size       int64  `json:"size"`
	Sha1       string `json:"sha1"`
}

type CommitUploadRequest struct {
	Parts []UploadPart `json:"parts"`
}

// ThumbnailOptions 缩略图尺寸边界，0表示不限制、不发送对应参数
type ThumbnailOptions struct {
	MinHeight int
	MinWidth  int
	MaxHeight int
	MaxWidth  int
}

type PreviewOptions struct {
	MinHeight int
	MinWidth  int
	MaxHeight int
	MaxWidth  int
}
