package main

import (
	"context"
	"flag"
	"os"

	"github.com/alexisnsns/pfalexn/internal/platform/config"
	"github.com/alexisnsns/pfalexn/internal/tools/owner"
)

func main() {
	cfg, err := owner.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := owner.Run(context.Background(), cfg, os.Stdin, os.Stdout); err != nil {
		config.Exitf("create owner: %v", err)
	}
}
