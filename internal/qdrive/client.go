package qdrive

import (
	"sync"
	"time"

	"resty.dev/v3"

	"QDrive-SDK/internal/helpers"
)

type Client struct {
	baseURL string
	client  *resty.Client
	exec    Executor
	links   *linkCache
	log     *helpers.QLogger

	// 缩略图和预览的轮询日志单独走资产日志文件
	assetLog *helpers.QLogger

	tokenMu     sync.RWMutex
	accessToken string
}

func NewClient(accessToken string) *Client {
	client := resty.New()
	client.SetTimeout(time.Duration(DEFAULT_TIMEOUT) * time.Second)

	log := helpers.SDKLog
	if log == nil {
		log = helpers.ConsoleLogger()
	}
	assetLog := helpers.AssetLog
	if assetLog == nil {
		assetLog = log
	}

	c := &Client{
		baseURL:     OPEN_BASE_URL,
		client:      client,
		links:       newLinkCache(DEFAULT_CACHE_SIZE),
		log:         log,
		assetLog:    assetLog,
		accessToken: accessToken,
	}
	c.exec = newRestyExecutor(client, DEFAULTUA, c.GetAccessToken, log)
	c.initDefaultRateLimits()

	return c
}

func (c *Client) initDefaultRateLimits() {
	c.SetRateLimit("/api/v1/", 10)
	c.SetRateLimit("/upload/v1/", 5)
}

// SetRateLimit 对路径前缀设置QPS限制，带Throttle标记的请求会在此排队
func (c *Client) SetRateLimit(pathPrefix string, qps int) {
	if e, ok := c.exec.(*restyExecutor); ok {
		e.SetRateLimit(pathPrefix, qps)
	}
}

// SetBaseURL 覆盖默认服务地址（测试和私有部署用）
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetUserAgent 并发安全，可在任意时刻切换UA
func (c *Client) SetUserAgent(ua string) {
	if e, ok := c.exec.(*restyExecutor); ok {
		e.SetUserAgent(ua)
	}
}

// SetExecutor 替换请求执行器
func (c *Client) SetExecutor(exec Executor) {
	c.exec = exec
}

func (c *Client) SetAccessToken(token string) {
	c.tokenMu.Lock()
	c.accessToken = token
	c.tokenMu.Unlock()
}

func (c *Client) GetAccessToken() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.accessToken
}

func (c *Client) GetThrottleStatus() ThrottleStatus {
	if e, ok := c.exec.(*restyExecutor); ok {
		return e.throttle.GetThrottleStatus()
	}
	return ThrottleStatus{}
}

func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
