package qdrive

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

func (c *Client) fileURL(fileID string, suffix string) string {
	return fmt.Sprintf("%s/api/v1/files/%s%s", c.baseURL, url.PathEscape(fileID), suffix)
}

func requireFileID(fileID string) error {
	if strings.TrimSpace(fileID) == "" {
		return fmt.Errorf("file id is required")
	}
	return nil
}

func (c *Client) GetFileInfo(ctx context.Context, fileID string) (*FileInfo, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}

	desc := NewRequest("GET", c.fileURL(fileID, "")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	return decodeData[FileInfo](env, "get file info")
}

// UpdateFileInfo 改名、改描述或移动到新父目录，零值字段不提交
func (c *Client) UpdateFileInfo(ctx context.Context, fileID string, req UpdateFileRequest) (*FileInfo, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}
	if req.Name == "" && req.Description == "" && req.ParentID == "" {
		return nil, fmt.Errorf("nothing to update")
	}

	desc := NewRequest("PUT", c.fileURL(fileID, "")).SetThrottle(true).SetPayload(req)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	return decodeData[FileInfo](env, "update file info")
}

// TrashFile 移入回收站
func (c *Client) TrashFile(ctx context.Context, fileID string) error {
	if err := requireFileID(fileID); err != nil {
		return err
	}

	desc := NewRequest("POST", c.fileURL(fileID, "/trash")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return err
	}

	_, err = decodeData[any](env, "trash file")
	return err
}

func (c *Client) RestoreFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}

	desc := NewRequest("POST", c.fileURL(fileID, "/restore")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	return decodeData[FileInfo](env, "restore file")
}

func (c *Client) GetTrashedFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}

	desc := NewRequest("GET", fmt.Sprintf("%s/api/v1/trash/%s", c.baseURL, url.PathEscape(fileID))).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	return decodeData[FileInfo](env, "get trashed file")
}

// PurgeFile 从回收站彻底删除，不可恢复
func (c *Client) PurgeFile(ctx context.Context, fileID string) error {
	if err := requireFileID(fileID); err != nil {
		return err
	}

	desc := NewRequest("DELETE", fmt.Sprintf("%s/api/v1/trash/%s", c.baseURL, url.PathEscape(fileID))).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return err
	}

	_, err = decodeData[any](env, "purge file")
	return err
}

func (c *Client) LockFile(ctx context.Context, fileID string, req LockRequest) (*LockInfo, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}

	desc := NewRequest("POST", c.fileURL(fileID, "/lock")).SetThrottle(true).SetPayload(req)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	return decodeData[LockInfo](env, "lock file")
}

func (c *Client) UnlockFile(ctx context.Context, fileID string) error {
	if err := requireFileID(fileID); err != nil {
		return err
	}

	desc := NewRequest("DELETE", c.fileURL(fileID, "/lock")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return err
	}

	_, err = decodeData[any](env, "unlock file")
	return err
}
