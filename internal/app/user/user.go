/*
Package user contains core data structures related to user identity.

It defines the basic representation of a user within the messaging system (the User struct),
used for passing user information both internally and to clients.
*/
package user

// User represents the basic identity information of a messaging participant.
// Fields use JSON tags for serialization in API responses and WebSocket messages.
// Credential data (the password hash) never leaves the store layer.
type User struct {

	// ID is the unique identifier for the user, assigned by the store at registration.
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Phone is the contact address other users dial to start a conversation.
	Phone string `json:"phone"`

	// Email is the address used for signing in.
	Email string `json:"email"`
}
