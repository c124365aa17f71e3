// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/gardener/novactl/pkg/identity"
	"github.com/gardener/novactl/pkg/utils"
)

// NewCatalogCommand returns a new command for interfacing with the service
// catalog.
func NewCatalogCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "catalog",
		Usage:   "service catalog operations",
		Aliases: []string{"cat"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list services from the catalog",
				Aliases: []string{"ls"},
				Action: func(ctx *cli.Context) error {
					session, err := newSessionFromFlags(ctx)
					if err != nil {
						return err
					}

					token, err := session.Token(ctx.Context)
					if err != nil {
						return err
					}

					grouped := utils.GroupBy(token.Catalog.Entries, func(item identity.CatalogEntry) string {
						return item.Type
					})

					types := make([]string, 0, len(grouped))
					for serviceType := range grouped {
						types = append(types, serviceType)
					}
					slices.Sort(types)

					headers := []string{
						"TYPE",
						"NAME",
						"REGION",
						"URL",
					}
					table := newTableWriter(os.Stdout, headers)

					for _, serviceType := range types {
						for _, entry := range grouped[serviceType] {
							for _, endpoint := range entry.Endpoints {
								region := endpoint.Region
								if region == "" {
									region = na
								}

								row := []string{
									entry.Type,
									entry.Name,
									region,
									endpoint.PublicURL,
								}
								table.Append(row)
							}
						}
					}

					table.Render()

					return nil
				},
			},
			{
				Name:  "regions",
				Usage: "list regions for a service type",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "service type",
						Value: identity.ServiceTypeCompute,
					},
				},
				Action: func(ctx *cli.Context) error {
					session, err := newSessionFromFlags(ctx)
					if err != nil {
						return err
					}

					token, err := session.Token(ctx.Context)
					if err != nil {
						return err
					}

					regions := token.Catalog.Regions(ctx.String("type"))
					for _, region := range regions {
						if region == "" {
							region = na
						}
						fmt.Println(region)
					}

					return nil
				},
			},
		},
	}

	return cmd
}
