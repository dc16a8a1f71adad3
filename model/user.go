package model

import "time"

type User struct {
	ID                   uint       `gorm:"primaryKey" bson:"_id" json:"id"`
	Username             string     `gorm:"size:100;uniqueIndex;not null" bson:"username" json:"username"`
	Email                string     `gorm:"size:255;uniqueIndex;not null" bson:"email" json:"email"`
	Password             string     `gorm:"not null" bson:"password" json:"-"` // argon2id salt$hash
	Gender               string     `gorm:"size:32;not null" bson:"gender" json:"gender"`
	DOB                  *time.Time `gorm:"column:dob;type:date" bson:"dob,omitempty" json:"dob,omitempty"`
	ProfilePic           string     `gorm:"column:profile_pic" bson:"profile_pic" json:"profilePic"`
	TwoFactorEnabled     bool       `gorm:"column:two_factor_enabled;not null" bson:"two_factor_enabled" json:"twoFactorEnabled"`
	OTPCode              string     `gorm:"column:otp_code;size:16" bson:"otp_code" json:"-"`
	OTPExpires           *time.Time `gorm:"column:otp_expires" bson:"otp_expires,omitempty" json:"-"`
	ResetPasswordToken   string     `gorm:"column:reset_password_token;size:128;index" bson:"reset_password_token" json:"-"`
	ResetPasswordExpires *time.Time `gorm:"column:reset_password_expires" bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt            time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updated_at" json:"updatedAt"`

	Notes []Note `gorm:"constraint:OnDelete:CASCADE" bson:"-" json:"-"`
}

// ClearOTP drops the pending one-time code.
func (u *User) ClearOTP() {
	u.OTPCode = ""
	u.OTPExpires = nil
}

// ClearResetToken drops the pending password reset token.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
}
