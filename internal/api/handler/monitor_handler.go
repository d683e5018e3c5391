package handler

import (
	"Crosswire/internal/api/dto"
	"Crosswire/internal/pkg/response"
	"Crosswire/internal/service"

	"github.com/gin-gonic/gin"
)

type MonitorHandler struct {
	monitorSvc service.MonitorService
}

func NewMonitorHandler(monitorSvc service.MonitorService) *MonitorHandler {
	return &MonitorHandler{
		monitorSvc: monitorSvc,
	}
}

// PollOnce 对单个帖子立即拉取一次指标并返回快照
func (s *MonitorHandler) PollOnce(c *gin.Context) {
	var req dto.PollOnceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	snap, err := s.monitorSvc.PollOnce(c.Request.Context(), req.PostID, req.NetworkType, req.OwnerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if snap == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, toSnapshotDTO(snap))
}
