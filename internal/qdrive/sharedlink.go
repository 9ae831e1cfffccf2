package qdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

func (c *Client) CreateSharedLink(ctx context.Context, fileID string, req SharedLinkRequest) (*SharedLink, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}
	if req.Access == "" {
		return nil, fmt.Errorf("shared link access level is required")
	}

	desc := NewRequest("POST", c.fileURL(fileID, "/share")).SetThrottle(true).SetPayload(req)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	link, err := decodeData[SharedLink](env, "create shared link")
	if err != nil {
		return nil, err
	}

	c.cacheSharedLink(fileID, link)
	return link, nil
}

// GetSharedLink 命中缓存时不发请求
func (c *Client) GetSharedLink(ctx context.Context, fileID string) (*SharedLink, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}

	if cached := c.links.Get("share:" + fileID); cached != nil {
		link := &SharedLink{}
		if err := json.Unmarshal(cached, link); err == nil {
			return link, nil
		}
	}

	desc := NewRequest("GET", c.fileURL(fileID, "/share")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	link, err := decodeData[SharedLink](env, "get shared link")
	if err != nil {
		return nil, err
	}

	c.cacheSharedLink(fileID, link)
	return link, nil
}

func (c *Client) RemoveSharedLink(ctx context.Context, fileID string) error {
	if err := requireFileID(fileID); err != nil {
		return err
	}

	desc := NewRequest("DELETE", c.fileURL(fileID, "/share")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return err
	}

	if _, err := decodeData[any](env, "remove shared link"); err != nil {
		return err
	}

	c.links.Del("share:" + fileID)
	return nil
}

func (c *Client) cacheSharedLink(fileID string, link *SharedLink) {
	if data, err := json.Marshal(link); err == nil {
		c.links.Set("share:"+fileID, data, -1)
	}
}

// GetDownloadURL 获取文件直链，短期缓存避免重复请求
func (c *Client) GetDownloadURL(ctx context.Context, fileID string) (string, error) {
	if err := requireFileID(fileID); err != nil {
		return "", err
	}

	if cached := c.links.Get("download:" + fileID); cached != nil {
		return string(cached), nil
	}

	desc := NewRequest("GET", c.fileURL(fileID, "/download")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return "", err
	}

	info, err := decodeData[DownloadInfo](env, "get download info")
	if err != nil {
		return "", err
	}
	if info.DownloadURL == "" {
		return "", fmt.Errorf("no download url available")
	}

	c.links.Set("download:"+fileID, []byte(info.DownloadURL), -1)
	return info.DownloadURL, nil
}

// DownloadFile 获取文件内容流，调用方负责Close
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	downloadURL, err := c.GetDownloadURL(ctx, fileID)
	if err != nil {
		return nil, err
	}

	desc := NewRequest("GET", downloadURL).SetRaw(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}
	if !env.IsSuccess() {
		env.Close()
		return nil, fmt.Errorf("download file failed with status %d: %w", env.StatusCode, env.apiError())
	}

	return env.Stream, nil
}
