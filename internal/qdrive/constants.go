package qdrive

const (
	// API常量
	OPEN_BASE_URL = "https://open-api.qdrive.com"

	// 资源生成轮询配置
	DEFAULT_RETRY_DELAY = 1 // 秒，Retry-After缺失或非法时的默认等待

	// 超时配置
	DEFAULT_TIMEOUT = 30 // 秒

	RETRY_AFTER_HEADER  = "Retry-After"
	TOTAL_PAGES_HEADER  = "X-Total-Pages"
	CONTENT_SHA1_HEADER = "X-Content-SHA1"

	// 分片上传配置
	DEFAULT_PART_SIZE       = 8 * 1024 * 1024
	DEFAULT_PART_CONCURRENT = 3

	// 共享链接缓存
	DEFAULT_CACHE_SIZE   = 10 * 1024 * 1024
	DEFAULT_CACHE_EXPIRE = 300 // 秒

	DEFAULTUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36 Edg/138.0.0.0"
)
