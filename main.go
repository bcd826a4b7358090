package main

import (
	"github.com/mrlokans/clippings/internal/cli"
	"github.com/mrlokans/clippings/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	cli.Main(cfg, Version+" ("+Commit+")")
}
