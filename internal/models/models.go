package models

import (
	"time"

	"gorm.io/gorm"
)

// Caregiver 护理人（看护端用户）
type Caregiver struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:128" json:"name"`
	Phone     string `gorm:"size:32" json:"phone"`
	Email     string `gorm:"size:128" json:"email"`
	PushAlias string `gorm:"size:64" json:"-"` // 推送通道别名，为空表示未绑定
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patient 患者（移动端用户）
type Patient struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:128" json:"name"`
	Phone       string `gorm:"size:32" json:"phone"`
	HomeAddress string `gorm:"size:256" json:"home_address"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PatientCaregiver 患者与护理人的关联，一个患者可配多个护理人
type PatientCaregiver struct {
	ID          uint `gorm:"primaryKey"`
	PatientID   uint `gorm:"index:idx_patient_caregiver,unique"`
	CaregiverID uint `gorm:"index:idx_patient_caregiver,unique"`
	CreatedAt   time.Time
}

// AlertRecord 已接收的告警落库记录，供检索与保留期清理
type AlertRecord struct {
	ID          uint   `gorm:"primaryKey"`
	AlertType   string `gorm:"size:32;index"` // "call_request" "emergency_911" "navigation_help"
	PatientID   uint   `gorm:"index"`
	PatientName string `gorm:"size:128"`
	CaregiverID uint   `gorm:"index"` // 目标护理人，多护理人时每人一条
	Message     string `gorm:"size:512"`
	Priority    string `gorm:"size:16"`
	Delivered   int    // 实际送达的连接数，0 表示无人在线被丢弃
	Latitude    float64
	Longitude   float64
	Address     string `gorm:"size:256"`
	CreatedAt   time.Time `gorm:"index"`
}

// Migrate 建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Caregiver{},
		&Patient{},
		&PatientCaregiver{},
		&AlertRecord{},
	)
}

// CaregiversForPatient 查询患者的全部护理人
func CaregiversForPatient(db *gorm.DB, patientID uint) ([]Caregiver, error) {
	var caregivers []Caregiver
	err := db.
		Joins("JOIN patient_caregivers ON patient_caregivers.caregiver_id = caregivers.id").
		Where("patient_caregivers.patient_id = ?", patientID).
		Find(&caregivers).Error
	return caregivers, err
}
