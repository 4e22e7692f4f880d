package directory

import (
	"time"
)

// The directory tables all carry an IsArchive soft flag instead of being
// deleted; archived rows stay visible to uniqueness checks.

type State struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255"`
	IsArchive  bool      `json:"is_archive" gorm:"index;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

type City struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255"`
	StateID    *uint     `json:"state_id" gorm:"index"`
	State      *State    `json:"state,omitempty" gorm:"foreignKey:StateID"`
	IsArchive  bool      `json:"is_archive" gorm:"index;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

type Zone struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255"`
	CityID     *uint     `json:"city_id" gorm:"index"`
	City       *City     `json:"city,omitempty" gorm:"foreignKey:CityID"`
	IsArchive  bool      `json:"is_archive" gorm:"index;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

type Facility struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255"`
	CityID     *uint     `json:"city_id" gorm:"index"`
	City       *City     `json:"city,omitempty" gorm:"foreignKey:CityID"`
	ZoneID     *uint     `json:"zone_id" gorm:"index"`
	Zone       *Zone     `json:"zone,omitempty" gorm:"foreignKey:ZoneID"`
	Address    string    `json:"address" gorm:"type:text"`
	IsArchive  bool      `json:"is_archive" gorm:"index;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

type Company struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"size:255"`
	Address         string    `json:"address" gorm:"type:text"`
	LogoPath        string    `json:"logo_path" gorm:"size:4096"`
	SpocName        string    `json:"spoc_name" gorm:"size:255"`
	SpocEmail       string    `json:"spoc_email" gorm:"uniqueIndex;size:255;not null"`
	SpocPhoneNumber string    `json:"spoc_phone_number" gorm:"uniqueIndex;size:13"`
	GSTIN           string    `json:"gstin" gorm:"size:255"`
	FacilityID      *uint     `json:"facility_id" gorm:"index"`
	Facility        *Facility `json:"facility,omitempty" gorm:"foreignKey:FacilityID"`
	IsArchive       bool      `json:"is_archive" gorm:"index;default:false"`
	CreatedAt       time.Time `json:"created_at"`
	ModifiedAt      time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

type PurposeOfVisit struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255"`
	IsArchive  bool      `json:"is_archive" gorm:"index;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}
