package qdrive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PreviewPage 一页文档预览。CurrentPage总是回传请求的页码，
// Stream和TotalPages只在成功时有值。
type PreviewPage struct {
	Stream      io.ReadCloser
	CurrentPage int
	TotalPages  int
	StatusCode  int
}

func thumbnailRequest(baseURL, fileID string, opts ThumbnailOptions, throttle bool) (*RequestDescriptor, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("file id is required")
	}

	desc := NewRequest("GET", fmt.Sprintf("%s/api/v1/files/%s/thumbnail", baseURL, url.PathEscape(fileID)))
	desc.SetQueryInt("min_height", opts.MinHeight)
	desc.SetQueryInt("min_width", opts.MinWidth)
	desc.SetQueryInt("max_height", opts.MaxHeight)
	desc.SetQueryInt("max_width", opts.MaxWidth)
	desc.SetRaw(true)
	desc.SetThrottle(throttle)

	return desc, nil
}

func previewRequest(baseURL, fileID string, page int, opts PreviewOptions) (*RequestDescriptor, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("file id is required")
	}
	if page < 1 {
		return nil, fmt.Errorf("preview page must be >= 1")
	}

	desc := NewRequest("GET", fmt.Sprintf("%s/api/v1/files/%s/preview", baseURL, url.PathEscape(fileID)))
	desc.SetQueryInt("page", page)
	desc.SetQueryInt("min_height", opts.MinHeight)
	desc.SetQueryInt("min_width", opts.MinWidth)
	desc.SetQueryInt("max_height", opts.MaxHeight)
	desc.SetQueryInt("max_width", opts.MaxWidth)
	desc.SetRaw(true)

	return desc, nil
}

// FetchThumbnail 获取文件缩略图。服务端尚在生成时返回202，
// handleRetry为true则按Retry-After轮询直到生成完毕。
func (c *Client) FetchThumbnail(ctx context.Context, fileID string, opts ThumbnailOptions, throttle bool, handleRetry bool) (io.ReadCloser, error) {
	desc, err := thumbnailRequest(c.baseURL, fileID, opts, throttle)
	if err != nil {
		return nil, err
	}

	outcome, err := fetchWithPolling(ctx, c.exec, desc, handleRetry, c.assetLog)
	if err != nil {
		return nil, err
	}
	if outcome.StatusCode == http.StatusAccepted {
		// handleRetry=false且资源尚未生成，由调用方决定何时再试
		return nil, NewAPIError(outcome.StatusCode, "thumbnail is still being generated")
	}

	return outcome.Stream, nil
}

// FetchPreview 获取文档预览的一页。返回值总是带上请求页码和终态状态码，
// 即使服务端返回了错误。
func (c *Client) FetchPreview(ctx context.Context, fileID string, page int, opts PreviewOptions, handleRetry bool) (*PreviewPage, error) {
	desc, err := previewRequest(c.baseURL, fileID, page, opts)
	if err != nil {
		return nil, err
	}

	result := &PreviewPage{CurrentPage: page}

	outcome, err := fetchWithPolling(ctx, c.exec, desc, handleRetry, c.assetLog)
	if outcome != nil {
		result.StatusCode = outcome.StatusCode
		result.Stream = outcome.Stream
		result.TotalPages = outcome.TotalPages
	}
	if err != nil {
		return result, err
	}

	return result, nil
}
