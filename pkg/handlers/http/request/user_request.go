package request

type CreateUserRequest struct {
	Email    string `json:"email"`     // @required
	Name     string `json:"name"`      // @required
	UserType string `json:"user_type"` // @required
}
