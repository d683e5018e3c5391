package handler

import (
	"Crosswire/internal/api/dto"
	"Crosswire/internal/pkg/response"
	"Crosswire/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	dispatchSvc service.DispatchService
}

func NewPostHandler(dispatchSvc service.DispatchService) *PostHandler {
	return &PostHandler{
		dispatchSvc: dispatchSvc,
	}
}

// Upcoming 查询未来窗口内待发布的帖子
func (s *PostHandler) Upcoming(c *gin.Context) {
	var query dto.UpcomingQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	posts, err := s.dispatchSvc.UpcomingPosts(c.Request.Context(), query.Hours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}
