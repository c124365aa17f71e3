// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/gardener/novactl/pkg/compute"
	"github.com/gardener/novactl/pkg/pagination"
)

// NewImageCommand returns a new command for interfacing with images.
func NewImageCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "image",
		Usage:   "image operations",
		Aliases: []string{"img"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list images",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "filter images by name",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "filter images by status",
					},
					&cli.BoolFlag{
						Name:  "minimal",
						Usage: "fetch the brief listing only",
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					opts := compute.ImageListOpts{
						Name:    ctx.String("name"),
						Status:  ctx.String("status"),
						Minimal: ctx.Bool("minimal"),
					}
					images, err := collectAll(ctx, func(c context.Context) (*pagination.Pager, error) {
						return client.Images().List(c, opts)
					}, compute.ExtractImages)
					if err != nil {
						return err
					}

					if len(images) == 0 {
						return nil
					}

					table := tabulateImages(images)
					table.Render()

					return nil
				},
			},
			{
				Name:    "show",
				Usage:   "show image details",
				Aliases: []string{"get"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "image",
						Usage:    "image id",
						Required: true,
						Aliases:  []string{"id"},
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					var image *compute.Image
					err = withRetry(ctx, func() error {
						image, err = client.Images().Get(ctx.Context, ctx.String("image"))
						return err
					})
					if err != nil {
						return err
					}

					created := na
					if !image.Created.IsZero() {
						created = image.Created.String()
					}

					fmt.Printf("%-20s: %s\n", "ID", image.ID)
					fmt.Printf("%-20s: %s\n", "Name", image.Name)
					fmt.Printf("%-20s: %s\n", "Status", image.Status)
					fmt.Printf("%-20s: %s\n", "Created", created)
					fmt.Printf("%-20s: %d\n", "Min Disk (GiB)", image.MinDisk)
					fmt.Printf("%-20s: %d\n", "Min RAM (MiB)", image.MinRAM)
					fmt.Printf("%-20s: %d\n", "Progress", image.Progress)

					return nil
				},
			},
			{
				Name:    "delete",
				Usage:   "delete an image",
				Aliases: []string{"rm"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "image",
						Usage:    "image id",
						Required: true,
						Aliases:  []string{"id"},
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					return withRetry(ctx, func() error {
						return client.Images().Delete(ctx.Context, ctx.String("image"))
					})
				},
			},
		},
	}

	return cmd
}

// tabulateImages adds the given images to a table and returns it. The
// returned table can be further customized, if needed, and rendered.
func tabulateImages(items []compute.Image) *tablewriter.Table {
	headers := []string{
		"ID",
		"NAME",
		"STATUS",
		"MIN-DISK",
		"MIN-RAM",
	}
	table := newTableWriter(os.Stdout, headers)

	for _, item := range items {
		row := []string{
			item.ID,
			item.Name,
			item.Status,
			strconv.Itoa(item.MinDisk),
			strconv.Itoa(item.MinRAM),
		}
		table.Append(row)
	}

	return table
}
