package model

// swagger:model Skill
type Skill struct {
	UUIDBase
	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null;index" json:"isActive"`
}

func (Skill) TableName() string {
	return "skills"
}
