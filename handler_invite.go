package vault_sdk

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roomvault/vault-sdk/response"
)

// -------------------- 邀请（Invite）相关接口 --------------------

type CreateInviteReq struct {
	GroupID    uint64 `json:"group_id" binding:"required"`
	TTLMinutes int64  `json:"ttl_minutes"` // 0 为不过期
}

// GinHandleCreateInvite 创建邀请
// @Summary 创建邀请
// @Description 为分组签发一次性邀请令牌（管理员能力），可选过期时间
// @Tags 邀请
// @Accept json
// @Produce json
// @Param req body CreateInviteReq true "创建参数"
// @Success 200 {object} response.Response{data=service.InviteDTO} "邀请"
// @Security BearerAuth
// @Router /invite [post]
func (c *VaultEngine) GinHandleCreateInvite(ctx *gin.Context) {
	var req CreateInviteReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	inv, err := c.InviteService.CreateInvite(uid, req.GroupID, time.Duration(req.TTLMinutes)*time.Minute)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(inv))
}

type InviteTokenReq struct {
	Token string `json:"token" binding:"required"`
}

// GinHandleAcceptInvite 兑换邀请
// @Summary 兑换邀请
// @Description 校验+入组+标记已兑换是一个原子单元；不可用令牌统一返回邀请不可用
// @Tags 邀请
// @Accept json
// @Produce json
// @Param req body InviteTokenReq true "令牌"
// @Success 200 {object} response.Response "group_id + room_id"
// @Security BearerAuth
// @Router /invite/accept [post]
func (c *VaultEngine) GinHandleAcceptInvite(ctx *gin.Context) {
	var req InviteTokenReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	groupID, roomID, err := c.InviteService.AcceptInvite(ctx.Request.Context(), req.Token, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]interface{}{
		"group_id": groupID,
		"room_id":  roomID,
	}))
}

// GinHandleRevokeInvite 撤销邀请
// @Summary 撤销邀请
// @Description 创建者本人或房间管理员可撤销；已兑换的邀请不可撤销
// @Tags 邀请
// @Accept json
// @Produce json
// @Param req body InviteTokenReq true "令牌"
// @Success 200 {object} response.Response "成功"
// @Security BearerAuth
// @Router /invite/revoke [post]
func (c *VaultEngine) GinHandleRevokeInvite(ctx *gin.Context) {
	var req InviteTokenReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.InviteService.RevokeInvite(uid, req.Token); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
