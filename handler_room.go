package vault_sdk

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roomvault/vault-sdk/response"
	"github.com/roomvault/vault-sdk/service"
)

// -------------------- 房间（Room）相关接口 --------------------

type CreateRoomReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// GinHandleCreateRoom 创建房间
// @Summary 创建房间
// @Description 创建私密分享房间（自动建默认分组、设置，创建者成为管理员+成员）
// @Tags 房间
// @Accept json
// @Produce json
// @Param req body CreateRoomReq true "创建参数"
// @Success 200 {object} response.Response{data=service.RoomDTO} "房间信息"
// @Failure 400 {object} response.Response "请求错误"
// @Security BearerAuth
// @Router /room [post]
func (c *VaultEngine) GinHandleCreateRoom(ctx *gin.Context) {
	var req CreateRoomReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	room, err := c.RoomService.CreateRoom(uid, req.Name, req.Description)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(room))
}

// GinHandleListUserRooms 获取用户参与的房间列表
// @Summary 房间列表
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]service.RoomDTO} "房间列表"
// @Security BearerAuth
// @Router /room/list [get]
func (c *VaultEngine) GinHandleListUserRooms(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	rooms, err := c.RoomService.ListUserRooms(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(rooms))
}

type CreateGroupReq struct {
	RoomID uint64 `json:"room_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// GinHandleCreateGroup 新建分组
// @Summary 新建分组
// @Description 在房间下新建成员分组（管理员能力）
// @Tags 房间
// @Accept json
// @Produce json
// @Param req body CreateGroupReq true "创建参数"
// @Success 200 {object} response.Response "分组信息"
// @Security BearerAuth
// @Router /room/group [post]
func (c *VaultEngine) GinHandleCreateGroup(ctx *gin.Context) {
	var req CreateGroupReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	group, err := c.RoomService.CreateGroup(uid, req.RoomID, req.Name)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(group))
}

// GinHandleGetRoomSettings 读取房间设置
// @Summary 房间设置
// @Tags 房间
// @Produce json
// @Param room_id query uint64 true "房间ID"
// @Success 200 {object} response.Response{data=service.RoomSettingsDTO} "设置"
// @Security BearerAuth
// @Router /room/settings [get]
func (c *VaultEngine) GinHandleGetRoomSettings(ctx *gin.Context) {
	roomID, err := strconv.ParseUint(ctx.Query("room_id"), 10, 64)
	if err != nil || roomID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid room_id"))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	settings, err := c.RoomService.GetSettings(uid, roomID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(settings))
}

type UpdateRoomSettingsReq struct {
	RoomID         uint64 `json:"room_id" binding:"required"`
	AllowDownloads *bool  `json:"allow_downloads"`
	IsArchived     *bool  `json:"is_archived"`
}

// GinHandleUpdateRoomSettings 修改房间设置
// @Summary 修改房间设置
// @Description 下载开关/归档标记（管理员能力）；归档只是打标记，房间不会被删除
// @Tags 房间
// @Accept json
// @Produce json
// @Param req body UpdateRoomSettingsReq true "设置参数"
// @Success 200 {object} response.Response "成功"
// @Security BearerAuth
// @Router /room/settings [post]
func (c *VaultEngine) GinHandleUpdateRoomSettings(ctx *gin.Context) {
	var req UpdateRoomSettingsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	err := c.RoomService.UpdateSettings(uid, req.RoomID, service.UpdateSettingsReq{
		AllowDownloads: req.AllowDownloads,
		IsArchived:     req.IsArchived,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
