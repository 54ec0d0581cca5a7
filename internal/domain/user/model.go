package user

// User is the identity issued by the auth collaborator. The application
// references it and never mutates it.
type User struct {
	ID    string
	Email string
}

// Session is the ephemeral proof of authentication for one signed-in user.
// AccessToken is opaque to this application and is forwarded to the data
// collaborator so its row-level policies apply.
type Session struct {
	AccessToken string
	User        User
}

func (s Session) Active() bool {
	return s.AccessToken != "" && s.User.ID != ""
}
