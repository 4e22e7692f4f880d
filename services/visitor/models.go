package visitor

import (
	"time"

	"github.com/spatium-offices/vms/services/directory"
	"github.com/spatium-offices/vms/services/user"
)

// Visitor is a person checked in at the front desk. Unlike users, visitor
// emails and phone numbers are not unique: the same person may visit many
// times.
type Visitor struct {
	ID          uint                      `json:"id" gorm:"primaryKey"`
	Email       string                    `json:"email" gorm:"index;size:255"`
	PhoneNumber string                    `json:"phone_number" gorm:"index;size:13"`
	Name        string                    `json:"name" gorm:"size:100"`
	FromCompany string                    `json:"from_company" gorm:"type:text"`
	CompanyID   *uint                     `json:"company_id" gorm:"index"`
	Company     *directory.Company        `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	UserID      *uint                     `json:"user_id" gorm:"index"`
	User        *user.User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	PurposeID   *uint                     `json:"purpose_id" gorm:"index"`
	Purpose     *directory.PurposeOfVisit `json:"purpose,omitempty" gorm:"foreignKey:PurposeID"`
	ImagePath   string                    `json:"image_path" gorm:"size:4096"`
	CreatedAt   time.Time                 `json:"created_at"`
	ModifiedAt  time.Time                 `json:"modified_at" gorm:"autoUpdateTime"`
}
