package cmd

import (
	"context"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var cellAddress string

var cellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "Cells operations",
}

var getCellsCmd = &cobra.Command{
	Use:   "getCells",
	Short: "Provide information about all cells",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Cells.GetCells(ctx)
	}),
}

var getCellDataCmd = &cobra.Command{
	Use:   "getCellData",
	Short: "Provide information about a specific cell",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Cells.GetCellData(ctx, cellAddress)
	}),
}

var getAddressesCmd = &cobra.Command{
	Use:   "getAddresses",
	Short: "List the addresses of all well known cells",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Cells.GetAddresses(ctx)
	}),
}

func init() {
	getCellDataCmd.Flags().StringVar(&cellAddress, "address", "", "the cell address, cell@domain")
	_ = getCellDataCmd.MarkFlagRequired("address")

	cellsCmd.AddCommand(getCellsCmd, getCellDataCmd, getAddressesCmd)
	rootCmd.AddCommand(cellsCmd)
}
