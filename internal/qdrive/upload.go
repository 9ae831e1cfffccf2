package qdrive

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"QDrive-SDK/internal/helpers"
)

type UploadRequest struct {
	Name        string    `json:"name" validate:"required"`
	ParentID    string    `json:"parentID" validate:"required"`
	Size        int64     `json:"size"`
	ContentSHA1 string    `json:"-"`
	Content     io.Reader `json:"-"`
}

var (
	validateOnce   sync.Once
	uploadValidate *validator.Validate
)

func uploadValidator() *validator.Validate {
	validateOnce.Do(func() {
		uploadValidate = validator.New(validator.WithRequiredStructEnabled())
	})
	return uploadValidate
}

// 上传前快速失败，不让服务端替我们发现空字段
func (r *UploadRequest) validate() error {
	if r.Content == nil {
		return fmt.Errorf("upload content stream is required")
	}
	if err := uploadValidator().Struct(r); err != nil {
		return fmt.Errorf("invalid upload request: %w", err)
	}
	return nil
}

// UploadFile 单次multipart上传：attributes元数据部分 + 文件内容部分，
// 调用方提供了内容SHA1时附带校验头。
func (c *Client) UploadFile(ctx context.Context, req UploadRequest) (*FileInfo, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	attrs, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal upload attributes failed: %w", err)
	}

	desc := NewRequest("POST", fmt.Sprintf("%s/upload/v1/files", c.baseURL)).
		SetThrottle(true).
		SetField("attributes", string(attrs)).
		AddPart("file", req.Name, req.Content)
	desc.SetHeader(CONTENT_SHA1_HEADER, req.ContentSHA1)

	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	return decodeData[FileInfo](env, "upload file")
}

// CreateUploadSession 为文件新版本开启分片上传会话
func (c *Client) CreateUploadSession(ctx context.Context, fileID string, name string, size int64) (*UploadSession, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("upload size must be positive")
	}

	payload := map[string]any{"name": name, "size": size}
	desc := NewRequest("POST", fmt.Sprintf("%s/upload/v1/files/%s/versions", c.baseURL, url.PathEscape(fileID))).
		SetThrottle(true).
		SetPayload(payload)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	session, err := decodeData[UploadSession](env, "create upload session")
	if err != nil {
		return nil, err
	}
	if session.PartSize <= 0 {
		session.PartSize = DEFAULT_PART_SIZE
	}

	return session, nil
}

func (c *Client) sessionURL(sessionID string, suffix string) string {
	return fmt.Sprintf("%s/upload/v1/sessions/%s%s", c.baseURL, url.PathEscape(sessionID), suffix)
}

// UploadPart 上传一个分片，带分片SHA1校验头
func (c *Client) UploadSessionPart(ctx context.Context, sessionID string, partNumber int, data []byte) (*UploadPart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if partNumber < 1 {
		return nil, fmt.Errorf("part number must be >= 1")
	}

	partSha1 := helpers.SHA1Hex(data)
	desc := NewRequest("PUT", c.sessionURL(sessionID, fmt.Sprintf("/parts/%d", partNumber))).
		SetThrottle(true).
		SetRawBody(data)
	desc.SetHeader(CONTENT_SHA1_HEADER, partSha1)

	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	if _, err := decodeData[any](env, "upload part"); err != nil {
		return nil, err
	}

	return &UploadPart{PartNumber: partNumber, Size: int64(len(data)), Sha1: partSha1}, nil
}

// CommitUploadSession 以分片清单收尾，服务端据此拼装新版本
func (c *Client) CommitUploadSession(ctx context.Context, sessionID string, parts []UploadPart, fileSha1 string) (*FileInfo, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no parts to commit")
	}

	desc := NewRequest("POST", c.sessionURL(sessionID, "/commit")).
		SetThrottle(true).
		SetPayload(CommitUploadRequest{Parts: parts})
	desc.SetHeader(CONTENT_SHA1_HEADER, fileSha1)

	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return nil, err
	}

	return decodeData[FileInfo](env, "commit upload session")
}

// CancelUploadSession 放弃会话，已上传的分片由服务端清理
func (c *Client) CancelUploadSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	desc := NewRequest("DELETE", c.sessionURL(sessionID, "")).SetThrottle(true)
	env, err := c.exec.Submit(ctx, desc)
	if err != nil {
		return err
	}

	_, err = decodeData[any](env, "cancel upload session")
	return err
}

// UploadFileVersion 分片上传文件新版本：开会话、并发传分片、提交清单。
// 读取是顺序的，上传由errgroup限制并发数。
func (c *Client) UploadFileVersion(ctx context.Context, fileID string, req UploadRequest) (*FileInfo, error) {
	if err := requireFileID(fileID); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Size <= 0 {
		return nil, fmt.Errorf("upload size must be positive")
	}

	session, err := c.CreateUploadSession(ctx, fileID, req.Name, req.Size)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DEFAULT_PART_CONCURRENT)

	fileHash := sha1.New()
	var partsMu sync.Mutex
	var parts []UploadPart

	partNumber := 0
	for {
		chunk := make([]byte, session.PartSize)
		n, readErr := io.ReadFull(req.Content, chunk)
		if n > 0 {
			partNumber++
			num := partNumber
			data := chunk[:n]
			fileHash.Write(data)

			g.Go(func() error {
				part, uerr := c.UploadSessionPart(gctx, session.SessionID, num, data)
				if uerr != nil {
					return fmt.Errorf("upload part %d failed: %w", num, uerr)
				}
				partsMu.Lock()
				parts = append(parts, *part)
				partsMu.Unlock()
				return nil
			})
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			_ = g.Wait()
			c.cancelSessionQuietly(session.SessionID)
			return nil, fmt.Errorf("read upload content failed: %w", readErr)
		}
	}

	if err := g.Wait(); err != nil {
		c.cancelSessionQuietly(session.SessionID)
		return nil, err
	}
	if len(parts) == 0 {
		c.cancelSessionQuietly(session.SessionID)
		return nil, fmt.Errorf("upload content is empty")
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })

	fileSha1 := req.ContentSHA1
	if fileSha1 == "" {
		fileSha1 = hex.EncodeToString(fileHash.Sum(nil))
	}

	info, err := c.CommitUploadSession(ctx, session.SessionID, parts, fileSha1)
	if err != nil {
		c.cancelSessionQuietly(session.SessionID)
		return nil, err
	}

	return info, nil
}

func (c *Client) cancelSessionQuietly(sessionID string) {
	if err := c.CancelUploadSession(context.Background(), sessionID); err != nil {
		c.log.Warnf("cancel upload session %s failed: %v", sessionID, err)
	}
}
