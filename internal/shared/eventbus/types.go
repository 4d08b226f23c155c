// Package eventbus 事件总线类型定义
package eventbus

// ============================================================================
// Key 前缀和常量
// ============================================================================

const (
	// KeyAdminActivities 审计事件 Stream
	KeyAdminActivities = "admin_activities"

	// Stream 最大长度
	MaxStreamLength = 1000
)
