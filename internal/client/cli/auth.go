package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userauth/internal/client/client"
	"github.com/dmitrijs2005/userauth/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, name and password and creates an account.
// It does not log in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	u, err := a.client.Register(ctx, email, string(password), name)
	if err != nil {
		return a.report("Registration failed", err)
	}

	printlnFn(fmt.Sprintf("Registered %s (id %d)", u.Email, u.ID))
	return nil
}

// Login prompts for credentials and keeps the returned session in memory.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	sess, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return a.report("Login unsuccessful", err)
	}

	printlnFn(fmt.Sprintf("Logged in as %s, token valid until %s", sess.User.Email, sess.ExpiresAt.Local().Format(time.RFC1123)))
	return nil
}

// Me shows the identity carried by the current token.
func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	me, err := a.client.Me(ctx)
	if err != nil {
		return a.report("Request failed", err)
	}

	printlnFn(fmt.Sprintf("id: %d\nemail: %s\nname: %s\nexpires: %s",
		me.User.ID, me.User.Email, me.User.Name, me.ExpiresAt.Local().Format(time.RFC1123)))
	return nil
}

// Reset changes the password of the logged-in account. The server checks
// that the email belongs to the current token.
func (a *App) Reset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Confirm email", a.out)
	if err != nil {
		return err
	}
	printlnFn("New password")
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if _, err := a.client.ResetPassword(ctx, email, string(password)); err != nil {
		return a.report("Password reset failed", err)
	}

	printlnFn("Password changed, session renewed")
	return nil
}

// Logout drops the in-memory session.
func (a *App) Logout(context.Context) error {
	a.client.Logout()
	printlnFn("Logged out")
	return nil
}

func (a *App) report(prefix string, err error) error {
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		printlnFn("Please login first")
	case errors.Is(err, common.ErrTokenExpired):
		printlnFn(prefix + ": session expired, please login again")
	case errors.Is(err, client.ErrUnavailable):
		printlnFn(prefix + ": server unavailable")
	default:
		printlnFn(prefix+":", err.Error())
	}
	return err
}
