package state

// Auth is the authentication slice. Tokens live in the token store, not here.
type Auth struct {
	IsAuthenticated bool
	Email           string
	Loading         bool
	Error           string
}

// Reduce applies a to the auth slice.
func (s Auth) Reduce(a Action) (Auth, bool) {
	switch a := a.(type) {
	case LoginRequest:
		s.Loading, s.Error = true, ""
	case LoginSuccess:
		s = Auth{IsAuthenticated: true, Email: a.Email}
	case LoginFailure:
		s.Loading, s.Error = false, a.Message
	case LogoutRequest:
		s.Loading = true
	case Logout:
		s = Auth{}
	case SessionRestored:
		s.IsAuthenticated, s.Loading, s.Error = true, false, ""
		if a.Email != "" {
			s.Email = a.Email
		}
	case ClearError:
		s.Error = ""
	default:
		return s, false
	}
	return s, true
}
