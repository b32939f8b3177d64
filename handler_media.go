package vault_sdk

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roomvault/vault-sdk/response"
	"github.com/roomvault/vault-sdk/transform"
)

// -------------------- 媒体（Media）相关接口 --------------------

// GinHandleUploadMedia 上传媒体
// @Summary 上传媒体
// @Description 整条流水线：授权 -> 归一化 -> 存储 -> 登记。照片会压缩重编码；
// @Description 视频超过时长上限直接拒绝（不产生任何存储调用），缩略图尽力而为。
// @Tags 媒体
// @Accept multipart/form-data
// @Produce json
// @Param room_id formData uint64 true "房间ID"
// @Param kind formData string true "photo|video"
// @Param duration_ms formData int64 false "视频时长（毫秒）"
// @Param file formData file true "媒体文件"
// @Success 200 {object} response.Response{data=service.UploadResult} "上传结果"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /media/upload [post]
func (c *VaultEngine) GinHandleUploadMedia(ctx *gin.Context) {
	roomID, err := strconv.ParseUint(ctx.PostForm("room_id"), 10, 64)
	if err != nil || roomID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid room_id"))
		return
	}

	var kind transform.Kind
	switch ctx.PostForm("kind") {
	case "photo":
		kind = transform.KindPhoto
	case "video":
		kind = transform.KindVideo
	default:
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "kind must be photo|video"))
		return
	}

	durationMs, _ := strconv.ParseInt(ctx.PostForm("duration_ms"), 10, 64)

	fh, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "file required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.UploadService.Upload(ctx.Request.Context(), uid, roomID, transform.Asset{
		Data:       data,
		Kind:       kind,
		Filename:   fh.Filename,
		DurationMs: durationMs,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(result))
}

// GinHandleRoomFeed 房间信息流
// @Summary 房间信息流
// @Description 按天聚合的媒体列表，最新的天在前
// @Tags 媒体
// @Produce json
// @Param room_id query uint64 true "房间ID"
// @Success 200 {object} response.Response{data=[]service.DayFeedDTO} "信息流"
// @Security BearerAuth
// @Router /media/feed [get]
func (c *VaultEngine) GinHandleRoomFeed(ctx *gin.Context) {
	roomID, err := strconv.ParseUint(ctx.Query("room_id"), 10, 64)
	if err != nil || roomID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid room_id"))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	feed, err := c.FeedService.RoomFeed(uid, roomID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(feed))
}

// GinHandleRoomVibe 房间氛围摘要
// @Summary 氛围摘要
// @Description 外部分析服务生成；失败时返回固定兜底文案（不报错）
// @Tags 媒体
// @Produce json
// @Param room_id query uint64 true "房间ID"
// @Success 200 {object} response.Response "摘要文本"
// @Security BearerAuth
// @Router /media/vibe [get]
func (c *VaultEngine) GinHandleRoomVibe(ctx *gin.Context) {
	roomID, err := strconv.ParseUint(ctx.Query("room_id"), 10, 64)
	if err != nil || roomID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid room_id"))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	summary, err := c.FeedService.VibeSummary(ctx.Request.Context(), uid, roomID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]string{"summary": summary}))
}

// GinHandleMediaDownload 下载原图地址
// @Summary 下载原图地址
// @Description 房间成员且房间开启 allow_downloads 才返回
// @Tags 媒体
// @Produce json
// @Param media_id query uint64 true "媒体ID"
// @Success 200 {object} response.Response "url"
// @Security BearerAuth
// @Router /media/download [get]
func (c *VaultEngine) GinHandleMediaDownload(ctx *gin.Context) {
	mediaID, err := strconv.ParseUint(ctx.Query("media_id"), 10, 64)
	if err != nil || mediaID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid media_id"))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	url, err := c.MediaService.DownloadURL(uid, mediaID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]string{"url": url}))
}

type AddCommentReq struct {
	MediaID uint64 `json:"media_id" binding:"required"`
	GroupID uint64 `json:"group_id" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// GinHandleAddComment 评论媒体
// @Summary 评论
// @Description 分组成员能力；分组与媒体必须属于同一房间，配不上一律拒绝
// @Tags 媒体
// @Accept json
// @Produce json
// @Param req body AddCommentReq true "评论参数"
// @Success 200 {object} response.Response "评论"
// @Security BearerAuth
// @Router /media/comment [post]
func (c *VaultEngine) GinHandleAddComment(ctx *gin.Context) {
	var req AddCommentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	comment, err := c.MediaService.AddComment(uid, req.MediaID, req.GroupID, req.Body)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(comment))
}

type AddReactionReq struct {
	MediaID uint64 `json:"media_id" binding:"required"`
	GroupID uint64 `json:"group_id" binding:"required"`
	Type    string `json:"type" binding:"required"`
}

// GinHandleAddReaction 表态
// @Summary 表态
// @Tags 媒体
// @Accept json
// @Produce json
// @Param req body AddReactionReq true "表态参数"
// @Success 200 {object} response.Response "表态"
// @Security BearerAuth
// @Router /media/reaction [post]
func (c *VaultEngine) GinHandleAddReaction(ctx *gin.Context) {
	var req AddReactionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	reaction, err := c.MediaService.AddReaction(uid, req.MediaID, req.GroupID, req.Type)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(reaction))
}
