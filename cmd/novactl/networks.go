// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/gardener/novactl/pkg/compute"
	"github.com/gardener/novactl/pkg/pagination"
)

// NewNetworkCommand returns a new command for interfacing with networks.
func NewNetworkCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "network",
		Usage:   "network operations",
		Aliases: []string{"net"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list networks",
				Aliases: []string{"ls"},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					networks, err := collectAll(ctx, func(c context.Context) (*pagination.Pager, error) {
						return client.Networks().List(c)
					}, compute.ExtractNetworks)
					if err != nil {
						return err
					}

					if len(networks) == 0 {
						return nil
					}

					table := tabulateNetworks(networks)
					table.Render()

					return nil
				},
			},
			{
				Name:    "show",
				Usage:   "show network details",
				Aliases: []string{"get"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "network",
						Usage:    "network id",
						Required: true,
						Aliases:  []string{"id"},
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					var network *compute.Network
					err = withRetry(ctx, func() error {
						network, err = client.Networks().Get(ctx.Context, ctx.String("network"))
						return err
					})
					if err != nil {
						return err
					}

					cidr := network.CIDR
					if cidr == "" {
						cidr = na
					}

					fmt.Printf("%-20s: %s\n", "ID", network.ID)
					fmt.Printf("%-20s: %s\n", "Label", network.Label)
					fmt.Printf("%-20s: %s\n", "CIDR", cidr)

					return nil
				},
			},
		},
	}

	return cmd
}

// tabulateNetworks adds the given networks to a table and returns it. The
// returned table can be further customized, if needed, and rendered.
func tabulateNetworks(items []compute.Network) *tablewriter.Table {
	headers := []string{
		"ID",
		"LABEL",
		"CIDR",
	}
	table := newTableWriter(os.Stdout, headers)

	for _, item := range items {
		cidr := item.CIDR
		if cidr == "" {
			cidr = na
		}

		row := []string{
			item.ID,
			item.Label,
			cidr,
		}
		table.Append(row)
	}

	return table
}
