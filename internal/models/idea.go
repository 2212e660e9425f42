package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Idea lifecycle states
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// EmbeddingDimensions is the width of ProjectIdea.Embedding
const EmbeddingDimensions = 256

// ProjectIdea is a generated idea owned by a user
type ProjectIdea struct {
	ID            uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
	UserID        uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Prompt        string           `gorm:"type:text;not null" json:"prompt"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Description   string           `gorm:"type:text;not null" json:"description"`
	MarketNeed    string           `gorm:"type:text" json:"market_need"`
	TechStack     JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tech_stack"`
	Difficulty    string           `gorm:"size:10;not null;index" json:"difficulty"`
	EstimatedTime string           `gorm:"size:100" json:"estimated_time"`
	Sources       SourceList       `gorm:"type:jsonb;not null;default:'[]'" json:"sources"`
	Keywords      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"keywords"`
	Degraded      bool             `gorm:"not null;default:false" json:"degraded"`
	IsPublic      bool             `gorm:"not null;default:true" json:"is_public"`
	Likes         int              `gorm:"not null;default:0" json:"likes"`
	Views         int              `gorm:"not null;default:0" json:"views"`
	Status        string           `gorm:"size:20;not null;default:'published';index" json:"status"`
	Plan          string           `gorm:"type:text" json:"plan,omitempty"`
	PlanURL       string           `gorm:"size:1024" json:"plan_url,omitempty"`
	Embedding     *pgvector.Vector `gorm:"type:vector(256)" json:"-"`
}

// BeforeCreate assigns an id and fills defaults
func (p *ProjectIdea) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusPublished
	}
	return nil
}

// BeforeSave lowercases and dedupes keywords
func (p *ProjectIdea) BeforeSave(tx *gorm.DB) error {
	p.Keywords = NormalizeKeywords(p.Keywords)
	return nil
}

// NormalizeKeywords trims, lowercases and dedupes keywords, keeping first occurrences
func NormalizeKeywords(in []string) JSONBStringArray {
	out := JSONBStringArray{}
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// ValidStatus reports whether s is a known lifecycle state
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}
