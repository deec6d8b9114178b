package services

import (
	"fortune0-platform/models"

	"gorm.io/gorm"
)

// LogActivity appends one audit row using whatever handle the caller is in —
// pass the tx when the action must commit or roll back with its business write.
func LogActivity(db *gorm.DB, userEmail, action, detail string) error {
	return db.Create(&models.Activity{
		UserEmail: userEmail,
		Action:    action,
		Detail:    detail,
	}).Error
}
