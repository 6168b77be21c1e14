// Package client wraps the AuthService gRPC API for the command-line client.
//
// GRPCClient keeps the session returned by Login or ResetPassword in memory
// and attaches its token as "authorization: Bearer <token>" metadata to
// every outgoing call. gRPC status errors are mapped back to the sentinel
// errors of the common package.
package client
