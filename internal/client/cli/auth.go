package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/securepass/internal/client/client"
	"github.com/dmitrijs2005/securepass/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates the account. The
// server signs the new account in right away.
func (a *App) Register(ctx context.Context) error {
	return a.signIn(ctx, "Registered", a.api.Register)
}

// Login prompts for a username and password and starts a session.
func (a *App) Login(ctx context.Context) error {
	return a.signIn(ctx, "Logged in", a.api.Login)
}

// Logout drops the session token.
func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) signIn(ctx context.Context, done string, call func(context.Context, string, []byte) error) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := call(ctx, userName, password); err != nil {
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, done+" as", userName)
	return nil
}

// describe renders an API error for the terminal, listing validation details
// field by field.
func describe(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Details) == 0 {
		return err.Error()
	}

	fields := make([]string, 0, len(apiErr.Details))
	for f := range apiErr.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(apiErr.Message)
	for _, f := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", f, apiErr.Details[f])
	}
	return b.String()
}
