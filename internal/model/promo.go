package model

import "time"

// PromoSlide is one page of the in-store promotional screen.
type PromoSlide struct {
	BaseModel
	Title           string     `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	ImageURL        string     `gorm:"type:text;not null" json:"image_url" validate:"required,url"`
	Caption         string     `gorm:"type:text" json:"caption"`
	Position        int        `gorm:"index;not null;default:0" json:"position"`
	DurationSeconds int        `gorm:"not null;default:8" json:"duration_seconds" validate:"gte=0,lte=600"`
	Active          bool       `gorm:"not null" json:"active"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
}

// VisibleAt reports whether the slide should be on screen at now.
func (p *PromoSlide) VisibleAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && !now.Before(*p.EndsAt) {
		return false
	}
	return true
}
