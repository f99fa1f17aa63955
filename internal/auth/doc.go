// Package auth handles answerer accounts: registration, login, and the
// capability check behind status changes. Credentials are bearer JWTs signed
// with HS256; passwords are stored as bcrypt hashes.
package auth
