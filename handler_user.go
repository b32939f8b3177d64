package vault_sdk

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roomvault/vault-sdk/response"
	"github.com/roomvault/vault-sdk/service"
)

// -------------------- 用户（User）相关接口 --------------------

// GinHandleUserRegister 用户注册
// @Summary 用户注册
// @Description 用户名+密码注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "注册参数"
// @Success 200 {object} response.Response{data=service.UserDTO} "用户信息"
// @Failure 400 {object} response.Response "请求错误"
// @Router /user/register [post]
func (c *VaultEngine) GinHandleUserRegister(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	user, err := c.UserService.Register(req)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(user))
}

// GinHandleUserLogin 用户登录
// @Summary 用户登录
// @Description 登录换取 token
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "登录参数"
// @Success 200 {object} response.Response{data=service.LoginResp} "token+用户信息"
// @Failure 401 {object} response.Response "登录失败"
// @Router /user/login [post]
func (c *VaultEngine) GinHandleUserLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := c.UserService.Login(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodePasswordError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleGetUserInfo 获取当前用户信息
// @Summary 当前用户信息
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=service.UserDTO} "用户信息"
// @Security BearerAuth
// @Router /user/info [get]
func (c *VaultEngine) GinHandleGetUserInfo(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	user, err := c.UserService.GetUserInfo(uid)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeUserNotFound, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(user))
}
