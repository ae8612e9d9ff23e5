package models

// Ingredient is catalog reference data. Rows are loaded by the data loader and never edited
// through the API.
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"type:varchar(200);index;not null"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(200);not null"`
}

// Tag labels recipes. Color is a HEX string such as #49B64E.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;type:varchar(200);not null" yaml:"name" validate:"required,max=200"`
	Color string `json:"color" gorm:"uniqueIndex;type:varchar(7);not null" yaml:"color" validate:"required,hexcolor"`
	Slug  string `json:"slug" gorm:"uniqueIndex;type:varchar(200);not null" yaml:"slug" validate:"required,max=200,slug"`
}
