package partner

import "time"

type Partner struct {
	ID               int64     `gorm:"primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Address          string    `gorm:"column:address"`
	Phone            string    `gorm:"column:phone"`
	Email            string    `gorm:"column:email;index"`
	Active           bool      `gorm:"column:active;not null"`
	RegistrationDate time.Time `gorm:"column:registration_date;autoCreateTime"`
}

func (Partner) TableName() string {
	return "partners"
}
