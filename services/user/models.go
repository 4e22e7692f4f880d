package user

import (
	"time"

	"github.com/spatium-offices/vms/services/directory"
)

// Role priorities mirror the fixed role set the authorization layer keys on.
const (
	RoleZoneManager     = "zone_manager"
	RoleFacilityManager = "facility_manager"
	RoleFrontDesk       = "front_desk"
	RoleSpoc            = "spoc"
	RoleAdmin           = "admin"
)

type Role struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Priority    int       `json:"priority" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

// User is the principal the token and OTP records reference. Email and phone
// number are each globally unique across archived and active rows alike.
type User struct {
	ID                 uint                `json:"id" gorm:"primaryKey"`
	RoleID             *uint               `json:"role_id" gorm:"index"`
	Role               *Role               `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Email              string              `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PhoneNumber        string              `json:"phone_number" gorm:"uniqueIndex;size:13"`
	FirstName          string              `json:"first_name" gorm:"size:100"`
	LastName           string              `json:"last_name" gorm:"size:100"`
	PasswordHash       string              `json:"-" gorm:"size:255"`
	IsArchive          bool                `json:"is_archive" gorm:"index;default:false"`
	IsStaff            bool                `json:"is_staff" gorm:"index;default:true"`
	CompanyID          *uint               `json:"company_id" gorm:"index"`
	Company            *directory.Company  `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	FacilityID         *uint               `json:"facility_id" gorm:"index"`
	Facility           *directory.Facility `json:"facility,omitempty" gorm:"foreignKey:FacilityID"`
	ZoneID             *uint               `json:"zone_id" gorm:"index"`
	Zone               *directory.Zone     `json:"zone,omitempty" gorm:"foreignKey:ZoneID"`
	ProfilePicturePath string              `json:"profile_picture_path" gorm:"size:4096"`
	CreatedAt          time.Time           `json:"created_at" gorm:"index"`
	ModifiedAt         time.Time           `json:"modified_at" gorm:"autoUpdateTime"`
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
