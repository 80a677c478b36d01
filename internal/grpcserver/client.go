package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls both services over a single connection using the JSON codec.
type Client struct {
	conn *grpc.ClientConn
}

func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Conn() *grpc.ClientConn { return c.conn }

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) ListCourses(ctx context.Context) (*ListCoursesResponse, error) {
	out := new(ListCoursesResponse)
	err := c.conn.Invoke(ctx, "/"+CatalogServiceName+"/ListCourses", &ListCoursesRequest{}, out)
	return out, err
}

func (c *Client) GetTopic(ctx context.Context, id string) (*GetTopicResponse, error) {
	out := new(GetTopicResponse)
	err := c.conn.Invoke(ctx, "/"+CatalogServiceName+"/GetTopic", &GetTopicRequest{ID: id}, out)
	return out, err
}

func (c *Client) GetNavigation(ctx context.Context, id string) (*GetNavigationResponse, error) {
	out := new(GetNavigationResponse)
	err := c.conn.Invoke(ctx, "/"+CatalogServiceName+"/GetNavigation", &GetNavigationRequest{ID: id}, out)
	return out, err
}

func (c *Client) ListProgress(ctx context.Context, req *ListProgressRequest) (*ListProgressResponse, error) {
	out := new(ListProgressResponse)
	err := c.conn.Invoke(ctx, "/"+ProgressServiceName+"/ListProgress", req, out)
	return out, err
}

func (c *Client) MarkCompleted(ctx context.Context, userID, topicID string) (*MarkCompletedResponse, error) {
	out := new(MarkCompletedResponse)
	err := c.conn.Invoke(ctx, "/"+ProgressServiceName+"/MarkCompleted", &MarkCompletedRequest{UserID: userID, TopicID: topicID}, out)
	return out, err
}
