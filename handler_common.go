package vault_sdk

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roomvault/vault-sdk/response"
	"github.com/roomvault/vault-sdk/service"
	"github.com/roomvault/vault-sdk/storage"
	"github.com/roomvault/vault-sdk/transform"
)

/* 这些 GinHandle* 是方便接入的闭包；更建议自己写 HTTP 处理层，
直接调用 engine 上对应的 service，按自己的业务需求组织路由。 */

// currentUserID 从 gin context 取鉴权中间件写入的 user_id。
func currentUserID(ctx *gin.Context) (uint64, bool) {
	uid, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return 0, false
	}
	id, ok := uid.(uint64)
	if !ok || id == 0 {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "invalid user_id"))
		return 0, false
	}
	return id, true
}

// writeServiceError 业务错误 -> 业务状态码（HTTP 统一 200，见 response 包说明）。
func writeServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthorizationDenied):
		ctx.JSON(http.StatusOK, response.Error(response.CodePermissionDeny, "权限不足"))
	case errors.Is(err, service.ErrInviteInvalid):
		ctx.JSON(http.StatusOK, response.Error(response.CodeInviteInvalid, "邀请不可用"))
	case errors.Is(err, service.ErrRoomArchived):
		ctx.JSON(http.StatusOK, response.Error(response.CodeRoomArchived, "房间已归档"))
	case errors.Is(err, transform.ErrDurationExceeded):
		ctx.JSON(http.StatusOK, response.Error(response.CodeMediaInvalid, "视频时长超出限制"))
	case errors.Is(err, storage.ErrWriteFailed):
		ctx.JSON(http.StatusOK, response.Error(response.CodeStorageError, "存储写入失败"))
	case errors.Is(err, service.ErrRegistrationFailed):
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, "媒体登记失败"))
	default:
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
	}
}
