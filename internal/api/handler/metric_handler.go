package handler

import (
	"Crosswire/internal/api/dto"
	"Crosswire/internal/model"
	"Crosswire/internal/pkg/response"
	"Crosswire/internal/service"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type MetricHandler struct {
	monitorSvc service.MonitorService
}

func NewMetricHandler(monitorSvc service.MonitorService) *MetricHandler {
	return &MetricHandler{
		monitorSvc: monitorSvc,
	}
}

// Latest 帖子在某网络上的最新一次快照
func (s *MetricHandler) Latest(c *gin.Context) {
	postID, networkType, err := pathPostAndNetwork(c)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	snap, err := s.monitorSvc.LatestMetrics(c.Request.Context(), postID, networkType)
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

// History 时间区间内的快照序列
func (s *MetricHandler) History(c *gin.Context) {
	postID, networkType, err := pathPostAndNetwork(c)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var query dto.MetricHistoryQueryDTO
	if err = c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	snaps, err := s.monitorSvc.MetricsHistory(c.Request.Context(), postID, networkType,
		time.Unix(query.Start, 0), time.Unix(query.End, 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]*dto.MetricSnapshotDTO, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toSnapshotDTO(snap))
	}
	response.Success(c, out)
}

// Names 帖子历史上出现过的指标名
func (s *MetricHandler) Names(c *gin.Context) {
	postID, networkType, err := pathPostAndNetwork(c)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	names, err := s.monitorSvc.AvailableMetricNames(c.Request.Context(), postID, networkType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, names)
}

func pathPostAndNetwork(c *gin.Context) (uint64, string, error) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		return 0, "", err
	}
	networkType := c.Param("network_type")
	if networkType == "" {
		return 0, "", service.ErrParamInvalid
	}
	return postID, networkType, nil
}

func toSnapshotDTO(snap *model.PerformanceSnapshot) *dto.MetricSnapshotDTO {
	var item dto.MetricSnapshotDTO
	if err := copier.Copy(&item, snap); err != nil {
		return &dto.MetricSnapshotDTO{
			PostID:      snap.PostID,
			NetworkType: snap.NetworkType,
			Timestamp:   snap.Timestamp,
		}
	}
	return &item
}
