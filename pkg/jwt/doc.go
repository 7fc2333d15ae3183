// Package jwt decodes session tokens issued by the backend API.
//
// Tokens are never verified here: the API owns the signing key and rejects
// forged tokens itself. The client side only needs to know whether a token is
// well formed and when it expires.
//
// # Usage
//
//	claims, err := jwt.Decode(token)
//	if err != nil {
//		// errors.Is(err, jwt.ErrInvalidToken)
//	}
//	if claims.HasSubject() {
//		log.Println("user", claims.UserID)
//	}
//
//	days, err := jwt.ExpirationDays(token, time.Now())
//	if errors.Is(err, jwt.ErrMissingExpiration) {
//		// token carries no exp claim
//	}
//
// # Error Handling
//
//   - ErrInvalidToken: token is empty or cannot be decoded
//   - ErrMissingExpiration: token has no exp claim
package jwt
