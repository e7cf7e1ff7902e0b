// Package auth issues and validates the bearer tokens the HTTP layer gates
// on. Credential storage is deliberately a static demo list; the workflow
// core only ever sees the opaque actor role carried in the token.
package auth

import (
	"crypto/subtle"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
)

// User is a demo account.
type User struct {
	ID       string
	Username string
	Password string
	Role     models.Role
}

var demoUsers = []User{
	{ID: "7a6c1a3e-6f3b-4a56-9a3f-2f24d3e6f001", Username: "applicant1", Password: "password1", Role: models.RoleApplicant},
	{ID: "7a6c1a3e-6f3b-4a56-9a3f-2f24d3e6f002", Username: "botmimic", Password: "password2", Role: models.RoleAutomation},
	{ID: "7a6c1a3e-6f3b-4a56-9a3f-2f24d3e6f003", Username: "admin", Password: "password3", Role: models.RoleAdmin},
}

// Authenticate checks a username/password pair against the demo accounts.
func Authenticate(username, password string) (User, bool) {
	for _, u := range demoUsers {
		if u.Username == username &&
			subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1 {
			return u, true
		}
	}
	return User{}, false
}
