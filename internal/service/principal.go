package service

// Principal is the authenticated caller every protected operation acts for
type Principal struct {
	UserID string
	Email  string
}

func requirePrincipal(p Principal) error {
	if p.UserID == "" {
		return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
	}
	return nil
}
