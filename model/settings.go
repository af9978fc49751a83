package model

import "time"

type CommunicationLink struct {
	ID        uint      `gorm:"primarykey;autoIncrement" json:"id"`
	Platform  string    `gorm:"uniqueIndex;size:64;not null" json:"platform"`
	URL       string    `gorm:"column:url;size:1024;not null" json:"url"`
	ImgURL    string    `gorm:"column:img_url;size:1024;not null" json:"imgUrl"`
	IsActive  bool      `gorm:"default:true;not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MediaConfig is effectively a singleton: readers use the most recently
// updated row.
type MediaConfig struct {
	ID            uint      `gorm:"primarykey;autoIncrement" json:"id"`
	MediaDriveURL string    `gorm:"column:media_drive_url;size:1024;not null" json:"mediaDriveUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"index"`
}

type SponsorshipPage struct {
	ID          uint      `gorm:"primarykey;autoIncrement" json:"id"`
	PageContent string    `gorm:"type:text;not null" json:"pageContent"`
	Sponsors    []Sponsor `gorm:"foreignKey:SponsorshipPageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sponsors"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"index"`
}

type Sponsor struct {
	ID                uint      `gorm:"primarykey;autoIncrement" json:"id"`
	Name              string    `gorm:"size:128;not null" json:"name"`
	LogoURL           string    `gorm:"column:logo_url;size:1024" json:"logoUrl"`
	WebsiteURL        string    `gorm:"column:website_url;size:1024" json:"websiteUrl"`
	SponsorshipPageID uint      `gorm:"not null;index" json:"sponsorshipPageId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
