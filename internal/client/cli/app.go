// Package cli implements the interactive terminal client. It drives the
// HTTP API with a small REPL: register, verify, log in, inspect the
// session, and log out.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/authkeeper/internal/client/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
)

type App struct {
	config   *config.Config
	client   *api.Client
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := api.New(c.ServerBaseURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName != "" {
		return fmt.Sprintf("(%s) ", a.userName)
	}
	return ""
}

func (a *App) reportError(err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.Message)
		for field, msgs := range apiErr.Fields {
			for _, m := range msgs {
				fmt.Printf("  %s %s\n", field, m)
			}
		}
		return
	}
	fmt.Printf("error: %v\n", err)
}

func (a *App) Register(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		a.reportError(err)
		return
	}
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		a.reportError(err)
		return
	}
	pw, err := GetPassword(os.Stdout, "Enter password")
	if err != nil {
		a.reportError(err)
		return
	}
	confirm, err := GetPassword(os.Stdout, "Repeat password")
	if err != nil {
		a.reportError(err)
		return
	}
	if pw != confirm {
		fmt.Println("passwords do not match")
		return
	}

	user, err := a.client.Register(ctx, username, email, pw, confirm)
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Printf("Registered %s. Check %s for the verification code, then run 'verify'.\n", user.UserName, user.Email)
}

func (a *App) Verify(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		a.reportError(err)
		return
	}
	codeStr, err := GetSimpleText(a.reader, "Enter the 6-digit code from the email", os.Stdout)
	if err != nil {
		a.reportError(err)
		return
	}
	code, err := strconv.ParseInt(codeStr, 10, 64)
	if err != nil {
		fmt.Println("the code must be a number")
		return
	}

	if err := a.client.VerifyEmail(ctx, email, code); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Email verified. You can log in now.")
}

func (a *App) Resend(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		a.reportError(err)
		return
	}

	if err := a.client.ResendVerification(ctx, email); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Verification code sent.")
}

func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		a.reportError(err)
		return
	}
	pw, err := GetPassword(os.Stdout, "Enter password")
	if err != nil {
		a.reportError(err)
		return
	}

	user, err := a.client.Login(ctx, email, pw)
	if err != nil {
		a.reportError(err)
		return
	}
	a.userName = user.UserName
	fmt.Printf("Logged in as %s.\n", user.UserName)
}

func (a *App) WhoAmI(ctx context.Context) {
	user, err := a.client.UserInfo(ctx)
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Printf("id: %s\nusername: %s\nemail: %s\nregistered: %s\n",
		user.ID, user.UserName, user.Email, user.CreatedAt.Format("2006-01-02 15:04:05"))
}

func (a *App) Refresh(ctx context.Context) {
	if err := a.client.Refresh(ctx); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Access token refreshed.")
}

func (a *App) Logout(ctx context.Context) {
	if err := a.client.Logout(ctx); err != nil {
		a.reportError(err)
		return
	}
	a.userName = ""
	fmt.Println("Logged out.")
}

func (a *App) printHelp() {
	if a.isLoggedIn() {
		fmt.Println("Available commands: whoami, refresh, logout, exit")
	} else {
		fmt.Println("Available commands: register, verify, resend, login, exit")
	}
}

func (a *App) Run(ctx context.Context) {

	fmt.Println("Welcome to AuthKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("ak %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}

		switch cmd := scanner.Text(); cmd {
		case "":
			continue
		case "help":
			a.printHelp()
		case "register":
			a.Register(ctx)
		case "verify":
			a.Verify(ctx)
		case "resend":
			a.Resend(ctx)
		case "login":
			a.Login(ctx)
		case "whoami":
			a.WhoAmI(ctx)
		case "refresh":
			a.Refresh(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			return
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}
