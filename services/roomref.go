package services

import "strings"

// 前端为尚未建立的会话生成的占位 ID 前缀
const provisionalPrefix = "temp-"

// RoomRef 连接边界上的房间引用：真实会话 ID 或客户端占位符。
// 管线只对该类型分支，不在别处做字符串前缀判断。
type RoomRef struct {
	id          string
	provisional bool
}

// ParseRoomRef 解析客户端传来的 roomId。空串与 temp- 占位符都视为"尚无会话"。
func ParseRoomRef(raw string) RoomRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RoomRef{}
	}
	if strings.HasPrefix(raw, provisionalPrefix) {
		return RoomRef{id: raw, provisional: true}
	}
	return RoomRef{id: raw}
}

// IsReal 是否指向一个可按 ID 查找的会话
func (r RoomRef) IsReal() bool {
	return r.id != "" && !r.provisional
}

// ID 原始房间标识
func (r RoomRef) ID() string {
	return r.id
}
