package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"coursehub/internal/catalog"
	"coursehub/internal/content"
)

func contentPathArg(cmd *cli.Command) string {
	if p := cmd.Args().First(); p != "" {
		return p
	}
	return "content"
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Load a content file or directory and report problems",
		ArgsUsage: "[path]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := contentPathArg(cmd)
			courses, err := content.Load(path)
			if err != nil {
				return err
			}
			cat := catalog.New(courses)
			w := cmd.Root().Writer

			seen := make(map[string]int, cat.Len())
			dups := 0
			for _, e := range cat.Entries() {
				if first, ok := seen[e.ID]; ok {
					dups++
					fmt.Fprintf(w, "warning: topic id %q at position %d shadowed by position %d\n", e.ID, e.Position, first)
					continue
				}
				seen[e.ID] = e.Position
			}
			for _, co := range courses {
				if co.TopicCount() == 0 {
					fmt.Fprintf(w, "warning: course %q has no topics\n", co.Key)
				}
			}
			fmt.Fprintf(w, "%s: %d courses, %d topics, %d duplicate ids\n", path, len(courses), cat.Len(), dups)
			return nil
		},
	}
}

func flattenCmd() *cli.Command {
	return &cli.Command{
		Name:      "flatten",
		Usage:     "Print the flattened catalog in navigation order",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			courses, err := content.Load(contentPathArg(cmd))
			if err != nil {
				return err
			}
			entries := catalog.Flatten(courses)
			if cmd.Bool("json") {
				return printJSON(cmd.Root().Writer, entries)
			}

			tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tID\tCOURSE\tSECTION\tTITLE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Position, e.ID, e.CourseKey, e.SectionKey, e.Title)
			}
			return tw.Flush()
		},
	}
}
