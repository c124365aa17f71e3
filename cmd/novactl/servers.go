// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/gardener/novactl/pkg/compute"
	"github.com/gardener/novactl/pkg/pagination"
)

// NewServerCommand returns a new command for interfacing with servers.
func NewServerCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "server",
		Usage:   "server operations",
		Aliases: []string{"srv"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list servers",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "filter servers by name",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "filter servers by status",
					},
					&cli.BoolFlag{
						Name:  "all-tenants",
						Usage: "list servers of all projects",
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

					opts := compute.ServerListOpts{
						Name:       ctx.String("name"),
						Status:     ctx.String("status"),
						AllTenants: ctx.Bool("all-tenants"),
						Minimal:    ctx.Bool("minimal"),
					}
					servers, err := collectAll(ctx, func(c context.Context) (*pagination.Pager, error) {
						return client.Servers().List(c, opts)
					}, compute.ExtractServers)
					if err != nil {
						return err
					}

					if len(servers) == 0 {
						return nil
					}

					table := tabulateServers(servers)
					table.Render()

					return nil
				},
			},
			{
				Name:    "show",
				Usage:   "show server details",
				Aliases: []string{"get"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "server",
						Usage:    "server id",
						Required: true,
						Aliases:  []string{"id"},
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					var server *compute.Server
					err = withRetry(ctx, func() error {
						server, err = client.Servers().Get(ctx.Context, ctx.String("server"))
						return err
					})
					if err != nil {
						return err
					}

					image := na
					if server.Image.ID != "" {
						image = server.Image.ID
					}
					keyName := na
					if server.KeyName != "" {
						keyName = server.KeyName
					}
					created := na
					if !server.Created.IsZero() {
						created = server.Created.String()
					}

					fmt.Printf("%-20s: %s\n", "ID", server.ID)
					fmt.Printf("%-20s: %s\n", "Name", server.Name)
					fmt.Printf("%-20s: %s\n", "Status", server.Status)
					fmt.Printf("%-20s: %s\n", "Created", created)
					fmt.Printf("%-20s: %s\n", "Tenant", server.TenantID)
					fmt.Printf("%-20s: %s\n", "Flavor", server.Flavor.ID)
					fmt.Printf("%-20s: %s\n", "Image", image)
					fmt.Printf("%-20s: %s\n", "Key Name", keyName)
					fmt.Printf("%-20s: %s\n", "Networks", formatAddresses(server.Addresses))
					fmt.Printf("%-20s: %d\n", "Progress", server.Progress)

					return nil
				},
			},
			{
				Name:  "boot",
				Usage: "boot a new server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "name of the server",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "image",
						Usage:    "id of the image to boot from",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "flavor",
						Usage:    "id of the flavor to boot with",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "key-name",
						Usage: "name of the keypair to inject",
					},
					&cli.StringFlag{
						Name:  "availability-zone",
						Usage: "availability zone to boot in",
					},
					&cli.StringFlag{
						Name:  "user-data",
						Usage: "path to a file handed to the guest on boot",
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "metadata in key=value form, may be repeated",
					},
					&cli.IntFlag{
						Name:  "min-count",
						Usage: "minimum number of servers to boot",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "max-count",
						Usage: "maximum number of servers to boot",
						Value: 1,
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					metadata := make(map[string]string)
					for _, item := range ctx.StringSlice("meta") {
						k, v, ok := strings.Cut(item, "=")
						if !ok {
							return fmt.Errorf("invalid metadata item %q, expected key=value", item)
						}
						metadata[k] = v
					}

					var userData []byte
					if path := ctx.String("user-data"); path != "" {
						userData, err = os.ReadFile(path)
						if err != nil {
							return err
						}
					}

					opts := compute.ServerCreateOpts{
						Name:             ctx.String("name"),
						ImageRef:         ctx.String("image"),
						FlavorRef:        ctx.String("flavor"),
						KeyName:          ctx.String("key-name"),
						AvailabilityZone: ctx.String("availability-zone"),
						Metadata:         metadata,
						UserData:         userData,
						MinCount:         ctx.Int("min-count"),
						MaxCount:         ctx.Int("max-count"),
					}

					var server *compute.Server
					err = withRetry(ctx, func() error {
						server, err = client.Servers().Create(ctx.Context, opts)
						return err
					})
					if err != nil {
						return err
					}

					fmt.Printf("%-20s: %s\n", "ID", server.ID)
					fmt.Printf("%-20s: %s\n", "Status", server.Status)
					if server.AdminPass != "" {
						fmt.Printf("%-20s: %s\n", "Admin Password", server.AdminPass)
					}

					return nil
				},
			},
			{
				Name:    "delete",
				Usage:   "delete a server",
				Aliases: []string{"rm"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "server",
						Usage:    "server id",
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
						return client.Servers().Delete(ctx.Context, ctx.String("server"))
					})
				},
			},
			{
				Name:  "start",
				Usage: "start a stopped server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "server",
						Usage:    "server id",
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
						return client.Servers().Start(ctx.Context, ctx.String("server"))
					})
				},
			},
			{
				Name:  "stop",
				Usage: "stop a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "server",
						Usage:    "server id",
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
						return client.Servers().Stop(ctx.Context, ctx.String("server"))
					})
				},
			},
			{
				Name:  "reboot",
				Usage: "reboot a server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "server",
						Usage:    "server id",
						Required: true,
						Aliases:  []string{"id"},
					},
					&cli.BoolFlag{
						Name:  "hard",
						Usage: "power cycle the server instead of a graceful reboot",
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					rebootType := compute.RebootSoft
					if ctx.Bool("hard") {
						rebootType = compute.RebootHard
					}

					return withRetry(ctx, func() error {
						return client.Servers().Reboot(ctx.Context, ctx.String("server"), rebootType)
					})
				},
			},
		},
	}

	return cmd
}

// tabulateServers adds the given servers to a table and returns it. The
// returned table can be further customized, if needed, and rendered.
func tabulateServers(items []compute.Server) *tablewriter.Table {
	headers := []string{
		"ID",
		"NAME",
		"STATUS",
		"FLAVOR",
		"NETWORKS",
	}
	table := newTableWriter(os.Stdout, headers)

	for _, item := range items {
		flavor := na
		if item.Flavor.ID != "" {
			flavor = item.Flavor.ID
		}

		row := []string{
			item.ID,
			item.Name,
			item.Status,
			flavor,
			formatAddresses(item.Addresses),
		}
		table.Append(row)
	}

	return table
}

// formatAddresses renders the addresses of a server grouped by network
// label.
func formatAddresses(addresses map[string][]compute.Address) string {
	if len(addresses) == 0 {
		return na
	}

	labels := make([]string, 0, len(addresses))
	for label := range addresses {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		addrs := make([]string, 0, len(addresses[label]))
		for _, item := range addresses[label] {
			addrs = append(addrs, item.Addr)
		}
		parts = append(parts, fmt.Sprintf("%s=%s", label, strings.Join(addrs, ", ")))
	}

	return strings.Join(parts, "; ")
}
