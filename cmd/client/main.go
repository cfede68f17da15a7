package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrianliechti/docagent/pkg/client"
)

func main() {
	urlFlag := flag.String("url", "http://localhost:7001", "server url")
	tokenFlag := flag.String("token", "", "server token")
	pagesFlag := flag.Int("max-pages", 0, "max pages to rasterize")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: client [flags] <invoice.pdf|scan.png>")
		os.Exit(2)
	}

	ctx := context.Background()

	options := []client.RequestOption{}

	if *tokenFlag != "" {
		options = append(options, client.WithToken(*tokenFlag))
	}

	client := client.New(*urlFlag, options...)

	if err := analyze(ctx, client, flag.Arg(0), *pagesFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyze(ctx context.Context, c *client.Client, path string, maxPages int) error {
	f, err := os.Open(path)

	if err != nil {
		return err
	}

	defer f.Close()

	input := client.AnalysisRequest{
		Name:   filepath.Base(path),
		Reader: f,
	}

	if maxPages > 0 {
		input.MaxPages = client.Ptr(maxPages)
	}

	record, err := c.Analyses.New(ctx, input)

	if errors.Is(err, client.ErrNoResult) {
		return errors.New("the agent finished without a validated record")
	}

	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(record)
}
