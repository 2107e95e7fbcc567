// Package accounts implements a user-account service: signup, login,
// logout, token refresh, password reset, and user CRUD over HTTP,
// backed by a relational store through bun.
package accounts
