package form

import "strings"

// Passwords are kept as typed; only blank ones are rejected.

type RegisterForm struct {
	Name     string `form:"name" binding:"required,max=250"`
	Email    string `form:"email" binding:"required,email,max=250"`
	Password string `form:"password" binding:"notblank"`
}

func (f *RegisterForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"notblank"`
}

func (f *LoginForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
}
