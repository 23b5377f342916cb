package directory

import "time"

// User is an account that can sign in to the console: an agent or an admin.
//
// PasswordHash holds the stored secret. Despite the column name it is
// compared by byte equality at sign-in (no hashing) for parity with the
// system this console replaces; see Service.Authenticate.
type User struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`

	PasswordHash string `json:"-" db:"password_hash"`

	Email string `json:"email,omitempty" db:"email"`
	Role  string `json:"role" db:"role"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
