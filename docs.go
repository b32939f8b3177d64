// Package vault_sdk 提供私密房间照片分享 SDK 核心能力
// @title Vault SDK API
// @version 1.0
// @description 私密房间照片/视频分享 SDK 的 RESTful API 文档：媒体上传流水线、房间/分组、邀请兑换
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 用户不存在 |
// @description | 10003 | 密码错误（登录失败） |
// @description | 10004 | Token 无效 |
// @description | 10005 | 权限不足 |
// @description | 10006 | 邀请不可用 |
// @description | 10007 | 媒体校验失败 |
// @description | 10008 | 存储写入失败 |
// @description | 10009 | 房间已归档 |
// @description | 99999 | 内部错误 |
// @description
// @description ## 响应格式
// @description 所有接口统一返回格式：
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
//
// @contact.name API Support
// @contact.url https://github.com/roomvault/vault-sdk/issues
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package vault_sdk
