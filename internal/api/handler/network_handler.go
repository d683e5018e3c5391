package handler

import (
	"Crosswire/internal/api/dto"
	"Crosswire/internal/pkg/response"
	"Crosswire/internal/provider"

	"github.com/gin-gonic/gin"
)

type NetworkHandler struct {
	registry *provider.Registry
}

func NewNetworkHandler(registry *provider.Registry) *NetworkHandler {
	return &NetworkHandler{
		registry: registry,
	}
}

// List 所有已注册网络及其凭证要求
func (s *NetworkHandler) List(c *gin.Context) {
	names := s.registry.Keys()
	out := make([]*dto.NetworkInfoDTO, 0, len(names))
	for _, name := range names {
		p := s.registry.Get(name)
		if p == nil {
			continue
		}
		out = append(out, &dto.NetworkInfoDTO{
			Name:                p.Identify(),
			RequiredCredentials: p.RequiredCredentialNames(),
			MonitoringHours:     p.MonitoringIntervalHours(),
			SupportsAnalytics:   p.SupportsAnalytics(),
		})
	}
	response.Success(c, out)
}
