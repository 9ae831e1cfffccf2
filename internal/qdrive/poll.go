package qdrive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"QDrive-SDK/internal/helpers"
)

// PollOutcome 一次资源获取的最终结果
type PollOutcome struct {
	Stream     io.ReadCloser
	StatusCode int
	TotalPages int
}

// computeDelay 解析Retry-After（整数秒），缺失或非法时退回默认间隔。
// 纯函数，解析失败不报错。
func computeDelay(header http.Header) time.Duration {
	hint := strings.TrimSpace(header.Get(RETRY_AFTER_HEADER))
	if hint != "" {
		if secs, err := strconv.Atoi(hint); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DEFAULT_RETRY_DELAY * time.Second
}

// extractPageCount 读取X-Total-Pages，缺失或非法时返回0
func extractPageCount(header http.Header) int {
	value := strings.TrimSpace(header.Get(TOTAL_PAGES_HEADER))
	if value == "" {
		return 0
	}
	pages, err := strconv.Atoi(value)
	if err != nil || pages < 0 {
		return 0
	}
	return pages
}

// fetchWithPolling 提交描述符并在服务端返回Processing时按提示间隔重试，
// 每轮只有一个请求在途，重试提交的是同一个描述符。
// handleRetry为false时不重试，观察到什么状态就返回什么状态。
// 重试次数没有上限，调用方通过ctx的deadline或cancel来约束整个轮询过程。
func fetchWithPolling(ctx context.Context, exec Executor, desc *RequestDescriptor, handleRetry bool, log *helpers.QLogger) (*PollOutcome, error) {
	for {
		env, err := exec.Submit(ctx, desc)
		if err != nil {
			return nil, err
		}

		switch env.Class {
		case ClassSuccess:
			return &PollOutcome{
				Stream:     env.Stream,
				StatusCode: env.StatusCode,
				TotalPages: extractPageCount(env.Header),
			}, nil

		case ClassProcessing:
			if !handleRetry {
				env.Close()
				return &PollOutcome{StatusCode: env.StatusCode}, nil
			}

			delay := computeDelay(env.Header)
			env.Close()
			log.Debugf("asset %s not ready, retry in %v", desc.URL, delay)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}

		default:
			env.Close()
			return &PollOutcome{StatusCode: env.StatusCode},
				fmt.Errorf("fetch %s failed with status %d: %w", desc.URL, env.StatusCode, env.apiError())
		}
	}
}
