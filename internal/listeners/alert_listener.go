package listeners

import (
	"context"
	"time"

	"CareLink/internal/models"
	"CareLink/pkg/alert"
	"CareLink/pkg/logger"
	"CareLink/pkg/notification"
	"CareLink/pkg/util"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InitAlertListeners 注册告警发布后的旁路处理：
// 落库记录每条告警；urgent 告警额外走推送/短信升级通道。
// 所有副作用异步执行，失败只记日志，不影响投递。
func InitAlertListeners(db *gorm.DB, push *notification.Push, sms *notification.SMS) {
	util.Sig().Connect(models.SigAlertPublished, func(sender any, params ...any) {
		a, ok := sender.(*alert.Alert)
		if !ok || len(params) < 2 {
			return
		}
		caregiverID := cast.ToUint(params[0])
		delivered := cast.ToInt(params[1])

		go func() {
			record := models.AlertRecord{
				AlertType:   string(a.Kind),
				PatientID:   uint(a.PatientID),
				PatientName: a.PatientName,
				CaregiverID: caregiverID,
				Message:     a.Message,
				Priority:    string(a.Priority),
				Delivered:   delivered,
			}
			if a.Location != nil {
				record.Latitude = a.Location.Latitude
				record.Longitude = a.Location.Longitude
				record.Address = a.Location.Address
			}
			if err := db.Create(&record).Error; err != nil {
				logger.Warn("alert record create failed", zap.Error(err))
			}
		}()

		if a.Priority != alert.PriorityUrgent {
			return
		}

		// urgent 且无人在线时升级通知
		if delivered > 0 {
			return
		}

		go escalate(db, push, sms, a, caregiverID)
	})
}

// escalate 通过推送和短信通知离线的护理人
func escalate(db *gorm.DB, push *notification.Push, sms *notification.SMS, a *alert.Alert, caregiverID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var caregiver models.Caregiver
	if err := db.First(&caregiver, caregiverID).Error; err != nil {
		logger.Warn("escalation caregiver lookup failed",
			zap.Uint("caregiver_id", caregiverID), zap.Error(err))
		return
	}

	rendered := alert.Render(*a)

	if push != nil && caregiver.PushAlias != "" {
		err := push.PushToCaregiver(ctx, caregiver.PushAlias, rendered.Title, a.Message, map[string]interface{}{
			"type":       string(a.Kind),
			"patient_id": a.PatientID,
		})
		if err != nil {
			logger.Warn("escalation push failed",
				zap.Uint("caregiver_id", caregiverID), zap.Error(err))
		}
	}

	if sms != nil && caregiver.Phone != "" {
		if err := sms.SendAlertSMS(ctx, caregiver.Phone, a.PatientName, a.Message); err != nil {
			logger.Warn("escalation sms failed",
				zap.Uint("caregiver_id", caregiverID), zap.Error(err))
		}
	}
}
