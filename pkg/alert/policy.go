package alert

import "time"

// 颜色与图标取值沿用面板侧的展示约定
const (
	ColorBlue   = "blue"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"

	IconPhone  = "phone"
	IconAlert  = "alert-circle"
	IconMapPin = "map-pin"

	TitleEmergency = "EMERGENCY!"
	TitleDefault   = "Patient Alert"

	// 非紧急通知的自动关闭延时
	AutoDismissAfter = 10 * time.Second
)

// Notification 按策略渲染后的通知，供展示层直接消费
type Notification struct {
	Title       string
	Message     string
	AddressLine string // 位置告警附带的地址行，可能为空
	Color       string
	Icon        string

	// AutoDismiss 为 false 时通知必须驻留到用户手动关闭
	AutoDismiss  bool
	DismissAfter time.Duration

	// PlaySound 紧急告警触发提示音
	PlaySound bool
}

// ColorFor 按优先级映射颜色，未知优先级回退为 blue
func ColorFor(p Priority) string {
	switch p {
	case PriorityLow:
		return ColorBlue
	case PriorityMedium:
		return ColorYellow
	case PriorityHigh:
		return ColorOrange
	case PriorityUrgent:
		return ColorRed
	default:
		return ColorBlue
	}
}

// IconFor 按类型映射图标，未知类型回退为通用告警图标
func IconFor(k Kind) string {
	switch k {
	case KindCallRequest:
		return IconPhone
	case KindEmergency911:
		return IconAlert
	case KindNavigationHelp, KindLocationAlert:
		return IconMapPin
	default:
		return IconAlert
	}
}

// TitleFor 紧急呼救使用醒目标题，其余统一为 Patient Alert
func TitleFor(k Kind) string {
	if k.IsEmergency() {
		return TitleEmergency
	}
	return TitleDefault
}

// Render 把告警渲染为通知。对未知 kind/priority 一律降级，绝不失败。
func Render(a Alert) Notification {
	n := Notification{
		Title:        TitleFor(a.Kind),
		Message:      a.Message,
		Color:        ColorFor(a.Priority),
		Icon:         IconFor(a.Kind),
		AutoDismiss:  true,
		DismissAfter: AutoDismissAfter,
	}
	if a.Location != nil && a.Location.Address != "" {
		n.AddressLine = "Location: " + a.Location.Address
	}
	if a.Priority == PriorityUrgent {
		// 紧急告警不自动关闭并播放提示音
		n.AutoDismiss = false
		n.DismissAfter = 0
		n.PlaySound = true
	}
	return n
}
