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
	"github.com/gardener/novactl/pkg/utils/ptr"
)

// NewFlavorCommand returns a new command for interfacing with flavors.
func NewFlavorCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "flavor",
		Usage:   "flavor operations",
		Aliases: []string{"f"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list flavors",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "private",
						Usage: "list private flavors instead of public ones",
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

					opts := compute.FlavorListOpts{
						Minimal: ctx.Bool("minimal"),
					}
					if ctx.Bool("private") {
						opts.IsPublic = ptr.To(false)
					}

					flavors, err := collectAll(ctx, func(c context.Context) (*pagination.Pager, error) {
						return client.Flavors().List(c, opts)
					}, compute.ExtractFlavors)
					if err != nil {
						return err
					}

					if len(flavors) == 0 {
						return nil
					}

					table := tabulateFlavors(flavors)
					table.Render()

					return nil
				},
			},
			{
				Name:    "show",
				Usage:   "show flavor details",
				Aliases: []string{"get"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "flavor",
						Usage:    "flavor id",
						Required: true,
						Aliases:  []string{"id"},
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					var flavor *compute.Flavor
					err = withRetry(ctx, func() error {
						flavor, err = client.Flavors().Get(ctx.Context, ctx.String("flavor"))
						return err
					})
					if err != nil {
						return err
					}

					fmt.Printf("%-20s: %s\n", "ID", flavor.ID)
					fmt.Printf("%-20s: %s\n", "Name", flavor.Name)
					fmt.Printf("%-20s: %d\n", "RAM (MiB)", flavor.RAM)
					fmt.Printf("%-20s: %d\n", "VCPUs", flavor.VCPUs)
					fmt.Printf("%-20s: %d\n", "Disk (GiB)", flavor.Disk)
					fmt.Printf("%-20s: %d\n", "Swap (MiB)", flavor.Swap)
					fmt.Printf("%-20s: %d\n", "Ephemeral (GiB)", flavor.Ephemeral)
					fmt.Printf("%-20s: %.1f\n", "RxTx Factor", flavor.RxTxFactor)
					fmt.Printf("%-20s: %v\n", "Public", flavor.IsPublic)

					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create a new flavor",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "name of the flavor",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "ram",
						Usage:    "memory size in MiB",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "vcpus",
						Usage:    "number of virtual CPUs",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "disk",
						Usage:    "root disk size in GiB",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "id",
						Usage: "id of the flavor, generated when empty",
					},
					&cli.IntFlag{
						Name:  "ephemeral",
						Usage: "ephemeral disk size in GiB",
					},
					&cli.IntFlag{
						Name:  "swap",
						Usage: "swap size in MiB",
					},
					&cli.Float64Flag{
						Name:  "rxtx-factor",
						Usage: "bandwidth factor of the flavor",
						Value: 1.0,
					},
					&cli.BoolFlag{
						Name:  "private",
						Usage: "make the flavor visible to the own project only",
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					opts := compute.FlavorCreateOpts{
						Name:       ctx.String("name"),
						RAM:        ctx.Int("ram"),
						VCPUs:      ctx.Int("vcpus"),
						Disk:       ctx.Int("disk"),
						ID:         ctx.String("id"),
						Ephemeral:  ctx.Int("ephemeral"),
						Swap:       ctx.Int("swap"),
						RxTxFactor: ctx.Float64("rxtx-factor"),
					}
					if ctx.Bool("private") {
						opts.IsPublic = ptr.To(false)
					}

					var flavor *compute.Flavor
					err = withRetry(ctx, func() error {
						flavor, err = client.Flavors().Create(ctx.Context, opts)
						return err
					})
					if err != nil {
						return err
					}

					fmt.Printf("%-20s: %s\n", "ID", flavor.ID)
					fmt.Printf("%-20s: %s\n", "Name", flavor.Name)

					return nil
				},
			},
			{
				Name:    "delete",
				Usage:   "delete a flavor",
				Aliases: []string{"rm"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "flavor",
						Usage:    "flavor id",
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
						return client.Flavors().Delete(ctx.Context, ctx.String("flavor"))
					})
				},
			},
		},
	}

	return cmd
}

// tabulateFlavors adds the given flavors to a table and returns it. The
// returned table can be further customized, if needed, and rendered.
func tabulateFlavors(items []compute.Flavor) *tablewriter.Table {
	headers := []string{
		"ID",
		"NAME",
		"RAM",
		"VCPUS",
		"DISK",
		"SWAP",
		"EPHEMERAL",
		"PUBLIC",
	}
	table := newTableWriter(os.Stdout, headers)

	for _, item := range items {
		row := []string{
			item.ID,
			item.Name,
			strconv.Itoa(item.RAM),
			strconv.Itoa(item.VCPUs),
			strconv.Itoa(item.Disk),
			strconv.Itoa(int(item.Swap)),
			strconv.Itoa(item.Ephemeral),
			strconv.FormatBool(item.IsPublic),
		}
		table.Append(row)
	}

	return table
}
