package model

// Nomenclature is one saved naming string. Rows are append-only.
type Nomenclature struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nomenclature string `gorm:"type:text" json:"nomenclature"`
	Project      string `gorm:"type:text" json:"project"`
	Extension    string `gorm:"type:text" json:"extension"`
	Date         string `gorm:"size:10" json:"date"`
	Time         string `gorm:"size:8" json:"time"`
	User         string `gorm:"type:text" json:"user"`
}

func (Nomenclature) TableName() string {
	return "nomenclatures"
}
