package models

// 业务信号名，监听器在 internal/listeners 中注册
const (
	// 每次告警发布后触发，sender 为 *alert.Alert，
	// params: caregiverID uint, delivered int
	SigAlertPublished = "alert.published"
)
