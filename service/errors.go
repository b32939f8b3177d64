package service

import "errors"

// 核心错误分类。handler 层据此映射业务状态码。
var (
	// ErrAuthorizationDenied 授权谓词不通过：一律拒绝（fail closed），无副作用。
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrInviteInvalid 邀请不可用：不存在/已过期/已撤销/已被兑换统一归为此错，
	// 不区分具体原因，避免令牌可探测。
	ErrInviteInvalid = errors.New("invite invalid")

	// ErrRegistrationFailed 媒体登记（落库）失败。此时存储里的对象已经写成功，
	// 会留下孤儿对象，这是明确接受的取舍，不做补偿删除、不重试。
	ErrRegistrationFailed = errors.New("media registration failed")

	// ErrRoomArchived 房间已归档，拒绝新上传。
	ErrRoomArchived = errors.New("room archived")
)
