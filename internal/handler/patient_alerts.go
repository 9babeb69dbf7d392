package handlers

import (
	"fmt"
	"net/http"
	"time"

	"CareLink/internal/models"
	"CareLink/pkg/alert"
	"CareLink/pkg/logger"
	"CareLink/pkg/metrics"
	"CareLink/pkg/realtime"
	"CareLink/pkg/response"
	"CareLink/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resolveCacheTTL = 5 * time.Minute

// CallCaregiverRequest 患者呼叫护理人
type CallCaregiverRequest struct {
	PatientID      int    `json:"patient_id" binding:"required"`
	CaregiverName  string `json:"caregiver_name"`
	CaregiverPhone string `json:"caregiver_phone"`
}

// EmergencyCallRequest 患者拨打911
type EmergencyCallRequest struct {
	PatientID int `json:"patient_id" binding:"required"`
}

// NavigationHelpRequest 患者请求回家导航协助
type NavigationHelpRequest struct {
	PatientID int             `json:"patient_id" binding:"required"`
	Location  *alert.Location `json:"location"`
}

// resolvedPatient 患者及其护理人的解析结果，短期缓存
type resolvedPatient struct {
	Patient    models.Patient
	Caregivers []models.Caregiver
}

// resolvePatient 解析患者与其全部护理人，结果缓存5分钟
func (h *Handlers) resolvePatient(c *gin.Context, patientID int) (*resolvedPatient, error) {
	key := fmt.Sprintf("patient:resolve:%d", patientID)
	if h.cache != nil {
		if v, ok := h.cache.Get(c, key); ok {
			if resolved, ok := v.(*resolvedPatient); ok {
				return resolved, nil
			}
		}
	}

	var patient models.Patient
	if err := h.db.First(&patient, patientID).Error; err != nil {
		return nil, err
	}
	caregivers, err := models.CaregiversForPatient(h.db, patient.ID)
	if err != nil {
		return nil, err
	}

	resolved := &resolvedPatient{Patient: patient, Caregivers: caregivers}
	if h.cache != nil {
		if err := h.cache.Set(c, key, resolved, resolveCacheTTL); err != nil {
			logger.Warn("resolve cache set failed", zap.Error(err))
		}
	}
	return resolved, nil
}

// relay 把告警发布到每个护理人房间，并镜像到SSE流。
// 房间为空时请求仍然成功：投递是尽力而为的。
func (h *Handlers) relay(a *alert.Alert, caregivers []models.Caregiver, event string) {
	for _, caregiver := range caregivers {
		delivered := h.hub.Publish(int(caregiver.ID), event, a)
		if delivered == 0 {
			logger.Warn("alert dropped, caregiver offline",
				zap.String("type", string(a.Kind)),
				zap.Uint("caregiver_id", caregiver.ID),
			)
		}
		if h.feed != nil {
			h.feed.Publish(int(caregiver.ID), event, a)
		}
		util.Sig().Emit(models.SigAlertPublished, a, caregiver.ID, delivered)
	}
	metrics.AlertPublished(string(a.Kind))
}

func (h *Handlers) handleCallCaregiver(c *gin.Context) {
	var req CallCaregiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "patient_id is required", nil)
		return
	}

	resolved, err := h.resolvePatient(c, req.PatientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			response.FailWithStatus(c, http.StatusNotFound, "patient not found")
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, "failed to resolve patient")
		return
	}

	a := alert.NewCallRequest(req.PatientID, resolved.Patient.Name, req.CaregiverName, req.CaregiverPhone)
	h.relay(&a, resolved.Caregivers, realtime.EventPatientAlert)

	response.Success(c, "caregiver notified", gin.H{"alert": a})
}

func (h *Handlers) handleEmergencyCall(c *gin.Context) {
	var req EmergencyCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "patient_id is required", nil)
		return
	}

	resolved, err := h.resolvePatient(c, req.PatientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			response.FailWithStatus(c, http.StatusNotFound, "patient not found")
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, "failed to resolve patient")
		return
	}

	a := alert.NewEmergency(req.PatientID, resolved.Patient.Name)
	h.relay(&a, resolved.Caregivers, realtime.EventEmergencyAlert)

	response.Success(c, "emergency alert sent", gin.H{"alert": a})
}

func (h *Handlers) handleNavigationHelp(c *gin.Context) {
	var req NavigationHelpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "patient_id is required", nil)
		return
	}

	resolved, err := h.resolvePatient(c, req.PatientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			response.FailWithStatus(c, http.StatusNotFound, "patient not found")
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, "failed to resolve patient")
		return
	}

	var loc alert.Location
	if req.Location != nil {
		loc = *req.Location
	}
	a := alert.NewNavigationHelp(req.PatientID, resolved.Patient.Name, loc)
	h.relay(&a, resolved.Caregivers, realtime.EventLocationAlert)

	response.Success(c, "navigation help alert sent", gin.H{"alert": a})
}

// handleAlertHistory 查询护理人收到的历史告警，最新的在前
func (h *Handlers) handleAlertHistory(c *gin.Context) {
	caregiverID := c.Query("caregiver_id")
	if caregiverID == "" {
		response.Fail(c, "caregiver_id is required", nil)
		return
	}

	limit := 50
	var records []models.AlertRecord
	err := h.db.
		Where("caregiver_id = ?", caregiverID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "failed to query alert history")
		return
	}

	response.Success(c, "ok", gin.H{"alerts": records})
}
