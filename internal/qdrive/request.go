package qdrive

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// MultipartPart 一个multipart文件部分
type MultipartPart struct {
	FieldName string
	FileName  string
	Reader    io.Reader
}

// RequestDescriptor 一次API调用的完整描述，构建后不再变更，
// 轮询时按原样重复提交同一个描述符。
// Payload、RawBody、Parts三者至多设置其一。
type RequestDescriptor struct {
	Method  string
	URL     string
	Query   map[string]string
	Headers map[string]string

	Payload any             // JSON负载
	RawBody []byte          // 原始字节负载
	Parts   []MultipartPart // multipart文件部分
	Fields  map[string]string

	Timeout  time.Duration
	Throttle bool // 是否参与限流
	Raw      bool // 成功时以流的形式返回响应体
}

func NewRequest(method, url string) *RequestDescriptor {
	return &RequestDescriptor{
		Method:  method,
		URL:     url,
		Query:   make(map[string]string),
		Headers: make(map[string]string),
	}
}

// SetQuery 空值直接省略，不发送空参数
func (d *RequestDescriptor) SetQuery(name, value string) *RequestDescriptor {
	if value == "" {
		return d
	}
	d.Query[name] = value
	return d
}

// SetQueryInt 零值视为未设置
func (d *RequestDescriptor) SetQueryInt(name string, value int) *RequestDescriptor {
	if value <= 0 {
		return d
	}
	d.Query[name] = strconv.Itoa(value)
	return d
}

func (d *RequestDescriptor) SetHeader(name, value string) *RequestDescriptor {
	if value == "" {
		return d
	}
	d.Headers[name] = value
	return d
}

func (d *RequestDescriptor) SetPayload(payload any) *RequestDescriptor {
	d.Payload = payload
	return d
}

func (d *RequestDescriptor) SetRawBody(body []byte) *RequestDescriptor {
	d.RawBody = body
	return d
}

func (d *RequestDescriptor) AddPart(fieldName, fileName string, r io.Reader) *RequestDescriptor {
	d.Parts = append(d.Parts, MultipartPart{FieldName: fieldName, FileName: fileName, Reader: r})
	return d
}

func (d *RequestDescriptor) SetField(name, value string) *RequestDescriptor {
	if d.Fields == nil {
		d.Fields = make(map[string]string)
	}
	d.Fields[name] = value
	return d
}

func (d *RequestDescriptor) SetTimeout(timeout time.Duration) *RequestDescriptor {
	d.Timeout = timeout
	return d
}

func (d *RequestDescriptor) SetThrottle(throttle bool) *RequestDescriptor {
	d.Throttle = throttle
	return d
}

func (d *RequestDescriptor) SetRaw(raw bool) *RequestDescriptor {
	d.Raw = raw
	return d
}

func (d *RequestDescriptor) validate() error {
	if d.Method == "" || d.URL == "" {
		return fmt.Errorf("request method and url are required")
	}
	bodies := 0
	if d.Payload != nil {
		bodies++
	}
	if d.RawBody != nil {
		bodies++
	}
	if len(d.Parts) > 0 || len(d.Fields) > 0 {
		bodies++
	}
	if bodies > 1 {
		return fmt.Errorf("request may carry only one body kind")
	}
	return nil
}
