// ABOUTME: CLI command for publishing the thread to X.
// ABOUTME: Validates every segment, posts the reply chain, and reports how far it got.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/seam/internal/compose"
	"github.com/2389-research/seam/internal/oauth"
	"github.com/2389-research/seam/internal/publish"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post the thread to X",
	Long: `Post every segment in order, each replying to the one before.
Nothing is sent if any segment is empty or over the length limit.
Rate limits are waited out a couple of times; any other failure stops
the run and reports which segment failed.`,
	Args: cobra.NoArgs,
	RunE: runPost,
}

var postDryRun bool

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Validate and show what would be posted without sending")
}

func runPost(cmd *cobra.Command, args []string) error {
	broker, err := requireBroker()
	if err != nil {
		return err
	}
	st, err := broker.Status()
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	if !st.Connected {
		return oauth.ErrNotAuthorized
	}

	texts, err := compose.NewEditor(globalSession).Prepared()
	if err != nil {
		return err
	}
	if postDryRun {
		fmt.Print(compose.Format(texts))
		fmt.Printf("Would post %d segments as %s.\n", len(texts), st.Identity.Handle())
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	results := newPublisher(globalConfig, broker).PostThread(ctx, texts)
	for _, r := range results {
		fmt.Println(r.String())
	}

	summary := publish.Summary(results, len(texts))
	if publish.Succeeded(results) != len(texts) {
		return errors.New(summary)
	}
	fmt.Println(summary)
	if link := publish.ThreadURL(globalConfig.Endpoints().WebURL, st.Identity.ScreenName, results); link != "" {
		fmt.Println(link)
	}
	return nil
}
