package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/license-checker/internal/types"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate OWNER/PROJECT",
	Short: "Print the license URL of a GitHub project",
	Long:  "Queries the license API for the project and falls back to probing LICENSE, LICENCE and COPYING file names.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	id, err := parseIdentity(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := newPipeline(cfg, cmd.ErrOrStderr())
	defer func() { _ = p.logger.Sync() }()

	licenseURL, err := p.locator.LicenseURL(context.Background(), id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), licenseURL)
	return nil
}

func parseIdentity(s string) (types.ProjectIdentity, error) {
	owner, project, _ := strings.Cut(strings.Trim(s, "/"), "/")
	id := types.ProjectIdentity{Owner: owner, Project: project}
	if !id.Valid() || strings.Contains(project, "/") {
		return types.ProjectIdentity{}, fmt.Errorf("expected OWNER/PROJECT, got %q", s)
	}
	return id, nil
}
