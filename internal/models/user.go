package models

// User is the profile returned by the auth endpoints.
type User struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Email string  `json:"email" yaml:"email"`
	Phone *string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// Session pairs a bearer token with the user it was issued to.
type Session struct {
	Token string `json:"token" yaml:"auth_token"`
	User  *User  `json:"user,omitempty" yaml:"auth_user,omitempty"`
}
