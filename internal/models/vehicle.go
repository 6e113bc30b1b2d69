package models

type Vehicle struct {
	BaseModel
	VIN       string        `gorm:"uniqueIndex;not null" json:"vin"`
	Make      string        `gorm:"not null;index" json:"make"`
	Model     string        `gorm:"not null;index" json:"model"`
	Year      int           `gorm:"not null" json:"year"`
	Trim      string        `json:"trim"`
	Color     string        `json:"color"`
	Mileage   int           `json:"mileage"`
	Price     float64       `gorm:"not null" json:"price"`
	Status    VehicleStatus `gorm:"type:varchar(20);default:'available';index" json:"status"`
	StockCode string        `gorm:"index" json:"stock_code"`
}
