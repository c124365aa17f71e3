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

// NewKeyPairCommand returns a new command for interfacing with SSH keypairs.
func NewKeyPairCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "keypair",
		Usage:   "keypair operations",
		Aliases: []string{"kp"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list keypairs",
				Aliases: []string{"ls"},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					keypairs, err := collectAll(ctx, func(c context.Context) (*pagination.Pager, error) {
						return client.KeyPairs().List(c)
					}, compute.ExtractKeyPairs)
					if err != nil {
						return err
					}

					if len(keypairs) == 0 {
						return nil
					}

					table := tabulateKeyPairs(keypairs)
					table.Render()

					return nil
				},
			},
			{
				Name:    "show",
				Usage:   "show keypair details",
				Aliases: []string{"get"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "keypair name",
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					var keypair *compute.KeyPair
					err = withRetry(ctx, func() error {
						keypair, err = client.KeyPairs().Get(ctx.Context, ctx.String("name"))
						return err
					})
					if err != nil {
						return err
					}

					keyType := keypair.Type
					if keyType == "" {
						keyType = na
					}

					fmt.Printf("%-20s: %s\n", "Name", keypair.Name)
					fmt.Printf("%-20s: %s\n", "Type", keyType)
					fmt.Printf("%-20s: %s\n", "Fingerprint", keypair.Fingerprint)
					fmt.Printf("%-20s: %s\n", "Public Key", keypair.PublicKey)

					return nil
				},
			},
			{
				Name:  "add",
				Usage: "add a new keypair",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "keypair name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "public-key",
						Usage: "path to a public key to import, generated when empty",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "keypair type, e.g. ssh or x509",
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					opts := compute.KeyPairCreateOpts{
						Name: ctx.String("name"),
						Type: ctx.String("type"),
					}
					if path := ctx.String("public-key"); path != "" {
						publicKey, err := os.ReadFile(path)
						if err != nil {
							return err
						}
						opts.PublicKey = string(publicKey)
					}

					var keypair *compute.KeyPair
					err = withRetry(ctx, func() error {
						keypair, err = client.KeyPairs().Create(ctx.Context, opts)
						return err
					})
					if err != nil {
						return err
					}

					// A generated private key is printed to stdout, so that
					// it can be redirected to a file. It cannot be retrieved
					// again afterwards.
					if keypair.PrivateKey != "" {
						fmt.Print(keypair.PrivateKey)
						return nil
					}

					fmt.Printf("%-20s: %s\n", "Name", keypair.Name)
					fmt.Printf("%-20s: %s\n", "Fingerprint", keypair.Fingerprint)

					return nil
				},
			},
			{
				Name:    "delete",
				Usage:   "delete a keypair",
				Aliases: []string{"rm"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "keypair name",
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					client, err := newComputeClientFromFlags(ctx)
					if err != nil {
						return err
					}

					return withRetry(ctx, func() error {
						return client.KeyPairs().Delete(ctx.Context, ctx.String("name"))
					})
				},
			},
		},
	}

	return cmd
}

// tabulateKeyPairs adds the given keypairs to a table and returns it. The
// returned table can be further customized, if needed, and rendered.
func tabulateKeyPairs(items []compute.KeyPair) *tablewriter.Table {
	headers := []string{
		"NAME",
		"TYPE",
		"FINGERPRINT",
	}
	table := newTableWriter(os.Stdout, headers)

	for _, item := range items {
		keyType := item.Type
		if keyType == "" {
			keyType = na
		}

		row := []string{
			item.Name,
			keyType,
			item.Fingerprint,
		}
		table.Append(row)
	}

	return table
}
