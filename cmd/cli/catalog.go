package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	cli "github.com/urfave/cli/v3"

	"coursehub/internal/grpcserver"
	"coursehub/pkg/models"
)

// withGRPC runs fn against the --grpc target, or returns false when none is set.
func withGRPC(cmd *cli.Command, fn func(*grpcserver.Client) error) (bool, error) {
	target := cmd.String("grpc")
	if target == "" {
		return false, nil
	}
	c, err := grpcserver.Dial(target)
	if err != nil {
		return true, err
	}
	defer c.Close()
	return true, fn(c)
}

func coursesCmd() *cli.Command {
	return &cli.Command{
		Name:  "courses",
		Usage: "List courses",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if used, err := withGRPC(cmd, func(c *grpcserver.Client) error {
				resp, err := c.ListCourses(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.Root().Writer, resp)
			}); used {
				return err
			}

			var resp map[string]any
			if err := doJSON(ctx, httpClient(), http.MethodGet, cmd.String("api")+"/courses", "", nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, resp)
		},
	}
}

func topicCmd() *cli.Command {
	return &cli.Command{
		Name:      "topic",
		Usage:     "Show a topic with its neighbours",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("topic id is required")
			}

			if used, err := withGRPC(cmd, func(c *grpcserver.Client) error {
				page, err := grpcTopicPage(ctx, c, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.Root().Writer, page)
			}); used {
				return err
			}

			var resp map[string]any
			endpoint := cmd.String("api") + "/topics/" + url.PathEscape(id) + "/page"
			if err := doJSON(ctx, httpClient(), http.MethodGet, endpoint, "", nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, resp)
		},
	}
}

// topicPage mirrors the body of GET /topics/:id/page.
type topicPage struct {
	Topic models.FlatEntry `json:"topic"`
	Prev  *models.TopicRef `json:"prev"`
	Next  *models.TopicRef `json:"next"`
}

func grpcTopicPage(ctx context.Context, c *grpcserver.Client, id string) (*topicPage, error) {
	topic, err := c.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	nav, err := c.GetNavigation(ctx, id)
	if err != nil {
		return nil, err
	}
	return &topicPage{Topic: topic.Topic, Prev: nav.Prev, Next: nav.Next}, nil
}

func navCmd() *cli.Command {
	return &cli.Command{
		Name:      "nav",
		Usage:     "Show the previous and next topic",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("topic id is required")
			}

			if used, err := withGRPC(cmd, func(c *grpcserver.Client) error {
				resp, err := c.GetNavigation(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.Root().Writer, resp)
			}); used {
				return err
			}

			var resp models.NavigationRefs
			endpoint := cmd.String("api") + "/topics/" + url.PathEscape(id) + "/nav"
			if err := doJSON(ctx, httpClient(), http.MethodGet, endpoint, "", nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, resp)
		},
	}
}
