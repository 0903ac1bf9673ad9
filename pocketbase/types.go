package pocketbase

// RecordList is the paginated envelope returned by GET records.
type RecordList struct {
	Page       int              `json:"page"`
	PerPage    int              `json:"perPage"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
	Items      []map[string]any `json:"items"`
}

// AuthResponse is the body returned by the auth-with-* and auth-refresh
// endpoints. Record is the authenticated user (or admin) record.
type AuthResponse struct {
	Token  string         `json:"token"`
	Record map[string]any `json:"record,omitempty"`
	Admin  map[string]any `json:"admin,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// OAuth2Params are the inputs of auth-with-oauth2. Provider, Code,
// CodeVerifier and RedirectURL are required.
type OAuth2Params struct {
	Provider     string         `json:"provider"`
	Code         string         `json:"code"`
	CodeVerifier string         `json:"codeVerifier"`
	RedirectURL  string         `json:"redirectUrl"`
	CreateData   map[string]any `json:"createData,omitempty"`
}

// AccountInput describes a new user account. Name, Description and Avatar
// are optional and are sent as null when empty.
type AccountInput struct {
	Username    string
	Email       string
	Password    string
	Name        string
	Description string
	Avatar      string
}

type passwordCredentials struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type createAccountRequest struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"passwordConfirm"`
	Name            *string `json:"name"`
	Avatar          *string `json:"avatar"`
	Description     *string `json:"description"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
