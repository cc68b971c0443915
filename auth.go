package jsonapi

// LoginRequired answers 401 "Unauthorized" unless the request carries an
// authenticated user. With WithLoginURL the response body includes the URL
// under login_url.
func LoginRequired(opts ...GuardOption) Guard {
	cfg := newGuardConfig(opts)
	authenticate := cfg.authenticate
	if authenticate == nil {
		authenticate = isAuthenticated
	}

	return func(req *Request, next Handler) (*Response, error) {
		if authenticate(req) {
			return next(req)
		}
		if cfg.loginURL != "" {
			return Unauthorized(Body{"login_url": cfg.loginURL}), nil
		}
		return Unauthorized(nil), nil
	}
}

func isAuthenticated(req *Request) bool {
	u := req.User()
	return u != nil && u.IsAuthenticated()
}
