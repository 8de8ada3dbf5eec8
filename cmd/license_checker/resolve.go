package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve URL",
	Short: "Resolve a homepage URL to a GitHub owner/project",
	Long:  "Applies the homepage resolution used by the report to a single URL. With --do-soup the page is fetched and scanned for a GitHub link.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := newPipeline(cfg, cmd.ErrOrStderr())
	defer func() { _ = p.logger.Sync() }()

	id, ok := p.resolver.Resolve(context.Background(), args[0], cfg.DoSoup)
	if !ok || !id.Valid() {
		return fmt.Errorf("could not resolve %s to a GitHub project", args[0])
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), id.String())
	return nil
}
