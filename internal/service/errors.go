package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrUnknownNetwork    = errors.New("不支持的社交网络")
	ErrAccountNotFound   = errors.New("网络账号不存在")
	ErrCredentialInvalid = errors.New("账号凭证缺失或无效")
	ErrPostNotTracked    = errors.New("帖子未成功发布或不在追踪窗口内")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrUnknownNetwork:    BadRequest,
	ErrAccountNotFound:   NotFound,
	ErrCredentialInvalid: BadRequest,
	ErrPostNotTracked:    NotFound,
	UnExpectedError:      InternalServerError,
}
