package model

type Supplier struct {
	BaseModel
	Name          string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required,max=100"`
	ContactPerson string `gorm:"type:varchar(100)" json:"contact_person" validate:"max=100"`
	Email         string `gorm:"type:varchar(120)" json:"email" validate:"omitempty,email"`
	Phone         string `gorm:"type:varchar(20)" json:"phone" validate:"max=20"`
	Address       string `gorm:"type:text" json:"address"`

	Products []Product `json:"products,omitempty"`
}
