package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/ratelimit"

	"mentor_sync/internal/config"
	"mentor_sync/pkg/errorx"
)

const apiPrefix = "/api/v1"

// HTTPClient 通过镜像服务 HTTP API 访问远端文档
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter

	mu    sync.RWMutex
	token string
}

// NewHTTPClient 创建 HTTP 客户端
// 超时由 http.Client 负责，同步引擎不再额外加超时
func NewHTTPClient(cfg config.RemoteConfig) *HTTPClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = config.DefaultRequestsPerSecond
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultRemoteTimeout) * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.New(rps),
		token:      cfg.Token,
	}
}

// SetToken 替换设备令牌（登录或续期后调用）
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) Configured() bool {
	return c.baseURL != ""
}

// envelope 镜像服务统一响应
type envelope struct {
	Code int             `json:"code"`
	Msg  json.RawMessage `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// documentBody 写入请求体
type documentBody struct {
	Keys []string        `json:"keys"`
	Data json.RawMessage `json:"data"`
}

type createResult struct {
	ID string `json:"id"`
}

func (c *HTTPClient) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := c.do(ctx, http.MethodGet, documentPath(collection, id), nil, &doc)
	return doc, err
}

func (c *HTTPClient) Put(ctx context.Context, collection, id string, keys []string, data json.RawMessage) error {
	return c.do(ctx, http.MethodPut, documentPath(collection, id), documentBody{Keys: keys, Data: data}, nil)
}

func (c *HTTPClient) Create(ctx context.Context, collection string, keys []string, data json.RawMessage) (string, error) {
	var res createResult
	if err := c.do(ctx, http.MethodPost, collectionPath(collection), documentBody{Keys: keys, Data: data}, &res); err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", errorx.Newf(errorx.CodeRemoteUnavailable, "远端创建 %s 未返回标识", collection)
	}
	return res.ID, nil
}

func (c *HTTPClient) Query(ctx context.Context, collection, key string) ([]Document, error) {
	var docs []Document
	path := collectionPath(collection) + "?key=" + url.QueryEscape(key)
	if err := c.do(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// do 发送请求并解析统一响应
// 传输错误、非 2xx、非成功业务码一律视为远端不可用；业务码 CodeNotFound 视为未找到
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errorx.Wrap(err, errorx.CodeRemoteUnavailable, "序列化远端请求失败")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeRemoteUnavailable, "构造远端请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	c.limiter.Take()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeRemoteUnavailable, "远端请求 %s %s 失败", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeRemoteUnavailable, "读取远端响应失败")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorx.Newf(errorx.CodeRemoteUnavailable, "远端返回 %s", resp.Status)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errorx.Wrap(err, errorx.CodeRemoteUnavailable, "解析远端响应失败")
	}
	switch env.Code {
	case errorx.CodeSuccess:
	case errorx.CodeNotFound:
		return errorx.Newf(errorx.CodeNotFound, "远端文档不存在: %s", path)
	default:
		return errorx.Newf(errorx.CodeRemoteUnavailable, "远端拒绝请求(code=%d): %s", env.Code, string(env.Msg))
	}

	if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return errorx.Wrap(err, errorx.CodeRemoteUnavailable, "解析远端数据失败")
		}
	}
	return nil
}

func collectionPath(collection string) string {
	return fmt.Sprintf("%s/collections/%s/documents", apiPrefix, url.PathEscape(collection))
}

func documentPath(collection, id string) string {
	return collectionPath(collection) + "/" + url.PathEscape(id)
}

var _ Client = (*HTTPClient)(nil)
