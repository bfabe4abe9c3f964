package service

import "io"

// MaxImageSize is the largest accepted course image upload.
const MaxImageSize = 5 << 20

// CourseInput is the course form shared by create and edit. Values are kept
// as submitted so a rejected form can be shown again unchanged.
type CourseInput struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	Category    string `form:"category" validate:"omitempty,numeric"`
	Price       string `form:"price" validate:"required,price"`
	Rating      string `form:"rating" validate:"required,oneof=1 2 3 4 5"`
	Instructor  string `form:"instructor" validate:"max=100"`

	Image *Upload `form:"-" validate:"-"`
}

// Upload is an uploaded file as received from a multipart form.
type Upload struct {
	Filename string
	Size     int64
	File     io.ReadSeeker
}

// SignupInput is the account registration form.
type SignupInput struct {
	Username        string `form:"username" validate:"required,max=150"`
	Email           string `form:"email" validate:"required,email,max=254"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmpassword" validate:"required,eqfield=Password"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ContactInput is the public contact form. Every submission is stored, so
// its fields carry no validation rules.
type ContactInput struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Message string `form:"message"`
}
