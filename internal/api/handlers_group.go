package api

import "Crosswire/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	PostHandler    *handler.PostHandler
	MetricHandler  *handler.MetricHandler
	MonitorHandler *handler.MonitorHandler
	NetworkHandler *handler.NetworkHandler
}
