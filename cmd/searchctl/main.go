// Command searchctl compiles finder names and criteria documents into
// OpenSearch/Elasticsearch queries and runs them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nimburion/searchcriteria/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewCommand(cli.CommandOptions{
		Name:        "searchctl",
		Description: "Criteria-based search over OpenSearch and Elasticsearch",
		EnvPrefix:   "SEARCHCTL",
	})
	cli.Execute(ctx, cmd)
}
