// Package auth provides password hashing, JWT access tokens, refresh tokens
// and the bearer-token middleware guarding the API.
//
// # Configuration
//
//	JWT_SECRET=<at least 32 characters>   # HS256 signing key
//	ACCESS_TOKEN_TTL=15m                  # Access token lifetime
//	REFRESH_TOKEN_TTL=168h                # Refresh token lifetime
//	AUTH_BCRYPT_COST=12                   # bcrypt cost factor
//
// # Usage
//
//	issuer := auth.NewTokenIssuer(cfg.Auth)
//	mw := auth.NewMiddleware(issuer, accountService)
//	api.POST("/books", mw.RequireUser(), handler)
//
// Extract the caller in handlers:
//
//	userID, ok := auth.GetUserID(c)
package auth
