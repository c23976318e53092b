package entity

// Account represents a person's account
type Account struct {
	Id        int64  `json:"id" gorm:"column:id;primaryKey"`
	Username  string `json:"username" gorm:"column:username;uniqueIndex"`
	Password  string `json:"-" gorm:"column:password"`
	CreatedAt int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt int64  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// AccountInfo represents public account info (without password)
type AccountInfo struct {
	Id        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
}

// ToAccountInfo converts Account to AccountInfo
func (a *Account) ToAccountInfo() *AccountInfo {
	return &AccountInfo{
		Id:        a.Id,
		Username:  a.Username,
		CreatedAt: a.CreatedAt,
	}
}
