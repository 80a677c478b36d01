package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	cli "github.com/urfave/cli/v3"
)

type authResponse struct {
	Token string `json:"token"`
}

func authCmd() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, register or log out",
		Commands: []*cli.Command{
			{
				Name: "login",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "login", Aliases: []string{"email", "u"}, Usage: "username or email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					payload := map[string]string{"login": cmd.String("login"), "password": cmd.String("password")}
					var resp authResponse
					if err := doJSON(ctx, httpClient(), http.MethodPost, cmd.String("api")+"/auth/login", "", payload, &resp); err != nil {
						return fmt.Errorf("login failed: %w", err)
					}
					if err := saveToken(cmd.String("token"), resp.Token); err != nil {
						return fmt.Errorf("save token: %w", err)
					}
					fmt.Fprintln(cmd.Root().Writer, "logged in")
					return nil
				},
			},
			{
				Name: "register",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					payload := map[string]string{
						"username": cmd.String("username"),
						"email":    cmd.String("email"),
						"password": cmd.String("password"),
					}
					var resp authResponse
					if err := doJSON(ctx, httpClient(), http.MethodPost, cmd.String("api")+"/auth/register", "", payload, &resp); err != nil {
						return fmt.Errorf("register failed: %w", err)
					}
					if err := saveToken(cmd.String("token"), resp.Token); err != nil {
						return fmt.Errorf("save token: %w", err)
					}
					fmt.Fprintln(cmd.Root().Writer, "registered and logged in")
					return nil
				},
			},
			{
				Name: "logout",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.String("token")
					if token, err := readToken(path); err == nil {
						// revoke server side too; a stale local token is removed regardless
						_ = doJSON(ctx, httpClient(), http.MethodPost, cmd.String("api")+"/auth/logout", token, nil, nil)
					}
					if err := clearToken(path); err != nil {
						return fmt.Errorf("logout failed: %w", err)
					}
					fmt.Fprintln(cmd.Root().Writer, "logged out")
					return nil
				},
			},
		},
	}
}

// authed wraps an action that needs the saved bearer token.
func authed(fn func(ctx context.Context, cmd *cli.Command, token string) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		token, err := readToken(cmd.String("token"))
		if err != nil {
			return err
		}
		return fn(ctx, cmd, token)
	}
}

func progressCmd() *cli.Command {
	courseFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "course", Usage: "limit to one course"}
	}
	return &cli.Command{
		Name:  "progress",
		Usage: "Track completed topics",
		Commands: []*cli.Command{
			{
				Name:      "done",
				Usage:     "Mark a topic completed",
				ArgsUsage: "<topic-id>",
				Action: authed(func(ctx context.Context, cmd *cli.Command, token string) error {
					id := cmd.Args().First()
					if id == "" {
						return errors.New("topic id is required")
					}
					var resp map[string]any
					payload := map[string]string{"topic_id": id}
					if err := doJSON(ctx, httpClient(), http.MethodPost, cmd.String("api")+"/users/progress", token, payload, &resp); err != nil {
						return err
					}
					return printJSON(cmd.Root().Writer, resp)
				}),
			},
			{
				Name:      "undo",
				Usage:     "Clear a completion",
				ArgsUsage: "<topic-id>",
				Action: authed(func(ctx context.Context, cmd *cli.Command, token string) error {
					id := cmd.Args().First()
					if id == "" {
						return errors.New("topic id is required")
					}
					endpoint := cmd.String("api") + "/users/progress/" + url.PathEscape(id)
					return doJSON(ctx, httpClient(), http.MethodDelete, endpoint, token, nil, nil)
				}),
			},
			{
				Name:  "list",
				Flags: []cli.Flag{courseFlag(), &cli.IntFlag{Name: "limit", Value: 100}, &cli.IntFlag{Name: "offset"}},
				Action: authed(func(ctx context.Context, cmd *cli.Command, token string) error {
					q := url.Values{}
					if course := cmd.String("course"); course != "" {
						q.Set("course", course)
					}
					q.Set("limit", strconv.Itoa(int(cmd.Int("limit"))))
					q.Set("offset", strconv.Itoa(int(cmd.Int("offset"))))

					var resp map[string]any
					endpoint := cmd.String("api") + "/users/progress?" + q.Encode()
					if err := doJSON(ctx, httpClient(), http.MethodGet, endpoint, token, nil, &resp); err != nil {
						return err
					}
					return printJSON(cmd.Root().Writer, resp)
				}),
			},
			{
				Name:  "summary",
				Usage: "Completed vs total per course",
				Action: authed(func(ctx context.Context, cmd *cli.Command, token string) error {
					var resp map[string]any
					if err := doJSON(ctx, httpClient(), http.MethodGet, cmd.String("api")+"/users/progress/summary", token, nil, &resp); err != nil {
						return err
					}
					return printJSON(cmd.Root().Writer, resp)
				}),
			},
			{
				Name:  "next",
				Usage: "First topic in catalog order not yet completed",
				Flags: []cli.Flag{courseFlag()},
				Action: authed(func(ctx context.Context, cmd *cli.Command, token string) error {
					endpoint := cmd.String("api") + "/users/progress/next"
					if course := cmd.String("course"); course != "" {
						endpoint += "?course=" + url.QueryEscape(course)
					}
					var resp map[string]any
					if err := doJSON(ctx, httpClient(), http.MethodGet, endpoint, token, nil, &resp); err != nil {
						return err
					}
					return printJSON(cmd.Root().Writer, resp)
				}),
			},
		},
	}
}
