package qdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"resty.dev/v3"

	"QDrive-SDK/internal/helpers"
)

// Executor 执行一次HTTP往返，把响应归类为Success/Processing/Error
type Executor interface {
	Submit(ctx context.Context, desc *RequestDescriptor) (*ResponseEnvelope, error)
}

type restyExecutor struct {
	client   *resty.Client
	token    func() string
	throttle *ThrottleManager
	log      *helpers.QLogger

	uaMu sync.RWMutex
	ua   string

	limiterLock sync.RWMutex
	limiters    map[string]*rate.Limiter
}

func newRestyExecutor(client *resty.Client, ua string, token func() string, log *helpers.QLogger) *restyExecutor {
	return &restyExecutor{
		client:   client,
		ua:       ua,
		token:    token,
		throttle: NewThrottleManager(log),
		log:      log,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (e *restyExecutor) SetUserAgent(ua string) {
	e.uaMu.Lock()
	e.ua = ua
	e.uaMu.Unlock()
}

func (e *restyExecutor) userAgent() string {
	e.uaMu.RLock()
	defer e.uaMu.RUnlock()
	return e.ua
}

func (e *restyExecutor) SetRateLimit(pathPrefix string, qps int) {
	e.limiterLock.Lock()
	defer e.limiterLock.Unlock()

	e.limiters[pathPrefix] = rate.NewLimiter(rate.Limit(qps), 1)
}

func (e *restyExecutor) waitForPermission(ctx context.Context, requestURL string) error {
	parsedURL, err := url.Parse(requestURL)
	var pathKey string
	if err != nil {
		pathKey = requestURL
	} else {
		pathKey = parsedURL.Path
	}

	e.limiterLock.RLock()
	var limiter *rate.Limiter
	for prefix, l := range e.limiters {
		if strings.HasPrefix(pathKey, prefix) {
			limiter = l
			break
		}
	}
	e.limiterLock.RUnlock()

	if limiter != nil {
		return limiter.Wait(ctx)
	}
	return nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func (e *restyExecutor) Submit(ctx context.Context, desc *RequestDescriptor) (*ResponseEnvelope, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}

	if desc.Throttle {
		if err := e.waitForPermission(ctx, desc.URL); err != nil {
			return nil, fmt.Errorf("rate limit wait error: %w", err)
		}
		e.throttle.WaitThrottleRecovery(ctx)
	}

	var cancel context.CancelFunc
	if desc.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, desc.Timeout)
	}

	req := e.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", e.userAgent())

	if token := e.token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	if len(desc.Query) > 0 {
		req.SetQueryParams(desc.Query)
	}
	for name, value := range desc.Headers {
		req.SetHeader(name, value)
	}

	if err := e.setBody(req, desc); err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}

	resp, err := req.Execute(desc.Method, desc.URL)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, fmt.Errorf("request %s %s failed: %w", desc.Method, desc.URL, err)
	}

	env := &ResponseEnvelope{
		StatusCode: resp.StatusCode(),
		Class:      Classify(resp.StatusCode()),
		Header:     resp.Header().Clone(),
	}

	if env.Class == ClassError && env.StatusCode == ErrCodeRateLimit {
		e.throttle.MarkThrottled()
	}

	// Raw请求成功时把响应体原样交给调用方
	if desc.Raw && env.Class == ClassSuccess {
		if cancel != nil {
			env.Stream = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
		} else {
			env.Stream = resp.Body
		}
		return env, nil
	}

	defer resp.Body.Close()
	if cancel != nil {
		defer cancel()
	}
	body, ioErr := io.ReadAll(resp.Body)
	if ioErr != nil {
		return nil, fmt.Errorf("read response body failed: %w", ioErr)
	}
	env.Body = body

	e.log.Debugf("%s %s -> %d (%d bytes)", desc.Method, desc.URL, env.StatusCode, len(body))

	return env, nil
}

func (e *restyExecutor) setBody(req *resty.Request, desc *RequestDescriptor) error {
	switch {
	case desc.Payload != nil:
		body, err := json.Marshal(desc.Payload)
		if err != nil {
			return fmt.Errorf("marshal request payload failed: %w", err)
		}
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	case desc.RawBody != nil:
		if _, ok := desc.Headers["Content-Type"]; !ok {
			req.SetHeader("Content-Type", "application/octet-stream")
		}
		req.SetBody(desc.RawBody)
	case len(desc.Parts) > 0 || len(desc.Fields) > 0:
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		for name, value := range desc.Fields {
			_ = writer.WriteField(name, value)
		}
		for _, part := range desc.Parts {
			if part.Reader == nil {
				return fmt.Errorf("multipart part %s has no content", part.FieldName)
			}
			w, err := writer.CreateFormFile(part.FieldName, part.FileName)
			if err != nil {
				return fmt.Errorf("create form file failed: %w", err)
			}
			if _, err := io.Copy(w, part.Reader); err != nil {
				return fmt.Errorf("copy part %s to form failed: %w", part.FieldName, err)
			}
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("close multipart writer failed: %w", err)
		}

		req.SetHeader("Content-Type", writer.FormDataContentType())
		req.SetBody(body.Bytes())
	}
	return nil
}

var _ Executor = (*restyExecutor)(nil)
