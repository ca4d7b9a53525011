package main

import (
	"fmt"
	"os"

	"github.com/donutnomad/godiscover/internal/cli"
)

var version = "dev"

func main() {
	app := cli.NewApp(version)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
