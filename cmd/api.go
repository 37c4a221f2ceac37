package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProxyGet makes a direct GET request to the caption proxy
func (r *Runner) ProxyGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	r.logger.Info("GET request", "path", path)

	resp, err := r.proxyService().Get(ctx, path)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrTransport, resp.StatusCode, string(resp.Body))
	}

	return r.writeResponse(resp.IsJSON, resp.JSONData, resp.Body, cmd.Bool("pretty"))
}

// ProxyPost makes a direct POST request with a JSON body to the caption proxy
func (r *Runner) ProxyPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}
	r.logger.Info("POST request", "path", path)

	resp, err := r.proxyService().Post(ctx, path, []byte(data))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrTransport, resp.StatusCode, string(resp.Body))
	}

	return r.writeResponse(resp.IsJSON, resp.JSONData, resp.Body, true)
}

// ProxyCaptions fetches a video's transcript and prints it as text, or the proxy's JSON with --json.
func (r *Runner) ProxyCaptions(ctx context.Context, cmd *cli.Command) error {
	r.proxyService()
	captions, err := r.captions.Fetch(ctx, cmd.StringArg("url"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		var data any
		if err := json.Unmarshal(captions.Raw, &data); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTransport, err)
		}
		return r.writeJSON(data, cmd.Bool("pretty"))
	}
	if len(captions.Segments) == 0 {
		return r.writePlain("(no caption segments for %s)\n", captions.VideoID)
	}
	return r.writePlain("%s\n", captions.Text())
}

func (r *Runner) writeResponse(isJSON bool, data any, body []byte, pretty bool) error {
	if isJSON {
		return r.writeJSON(data, pretty)
	}
	if _, err := r.output.Write(body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	_, err := r.output.Write([]byte("\n"))
	return err
}

// proxyCommand handles direct calls to the caption proxy
func proxyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "proxy",
		Usage: "Direct calls to the caption proxy",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the proxy, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ProxyGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.ProxyPost,
			},
			{
				Name:      "captions",
				Usage:     "Fetch the transcript of a YouTube video",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Flags:     jsonFlags(),
				Action:    r.ProxyCaptions,
			},
		},
	}
}
