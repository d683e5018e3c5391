package provider

import (
	log "log/slog"
	"sort"
	"strings"
)

// Registry 持有所有已注册的 Provider，按小写网络标识索引。
// 启动时注册完毕后只读，可被多个调度循环并发访问。
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register 注册一个 Provider，nil 或标识为空时忽略
func (r *Registry) Register(p Provider) {
	if p == nil {
		log.Warn("ignoring nil provider registration")
		return
	}
	key := strings.ToLower(strings.TrimSpace(p.Identify()))
	if key == "" {
		log.Warn("ignoring provider with blank identity")
		return
	}
	r.providers[key] = p
}

// Get 大小写不敏感查找，未知或空白标识返回 nil
func (r *Registry) Get(networkKey string) Provider {
	key := strings.ToLower(strings.TrimSpace(networkKey))
	if key == "" {
		return nil
	}
	return r.providers[key]
}

// List 返回所有已注册的 Provider
func (r *Registry) List() []Provider {
	out := make([]Provider, 0, len(r.providers))
	for _, key := range r.Keys() {
		out = append(out, r.providers[key])
	}
	return out
}

// Keys 返回排序后的网络标识列表
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.providers))
	for key := range r.providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsSupported 是否存在对应的 Provider
func (r *Registry) IsSupported(networkKey string) bool {
	return r.Get(networkKey) != nil
}
