package model

import "time"

// Legislator's natural key is (full_name, chamber, district_code), where
// district_code is the raw chamber-specific encoding ("CA" for a senator,
// "CA12" for a representative).
type Legislator struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	FullName     string    `gorm:"column:full_name;type:text;not null;uniqueIndex:idx_legislators_natural_key"`
	FirstName    string    `gorm:"column:first_name;type:text;not null"`
	LastName     string    `gorm:"column:last_name;type:text;not null"`
	Chamber      string    `gorm:"column:chamber;type:text;not null;uniqueIndex:idx_legislators_natural_key"`
	DistrictCode string    `gorm:"column:district_code;type:text;not null;default:'';uniqueIndex:idx_legislators_natural_key"`
	State        string    `gorm:"column:state;type:text;not null"`
	District     *int      `gorm:"column:district"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (Legislator) TableName() string {
	return "legislators"
}

type Insider struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:text;not null;uniqueIndex:idx_insiders_natural_key"`
	TickerSymbol string    `gorm:"column:ticker_symbol;type:text;not null;uniqueIndex:idx_insiders_natural_key"`
	Role         string    `gorm:"column:role;type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (Insider) TableName() string {
	return "insiders"
}

type Ticker struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Symbol      string    `gorm:"column:symbol;type:text;not null;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name;type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (Ticker) TableName() string {
	return "tickers"
}
