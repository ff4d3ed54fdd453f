package fleet

import "time"

type Driver struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Phone     string    `gorm:"column:phone"`
	LicenseNo string    `gorm:"column:license_no;uniqueIndex;not null"`
	Active    bool      `gorm:"column:active;default:true;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}

type Vehicle struct {
	ID        int64     `gorm:"primaryKey"`
	Number    string    `gorm:"column:number;uniqueIndex;not null"`
	Type      string    `gorm:"column:type;not null"`
	Capacity  int       `gorm:"column:capacity"`
	Active    bool      `gorm:"column:active;default:true;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

type EntitledVehicle struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;not null;index"`
	VehicleNumber string    `gorm:"column:vehicle_number;not null"`
	VehicleType   string    `gorm:"column:vehicle_type"`
	Active        bool      `gorm:"column:active;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (EntitledVehicle) TableName() string {
	return "entitled_vehicles"
}
