package main

import (
	"context"
	"os"

	_ "time/tzdata"

	"github.com/eshaffer321/wooctl/internal/cli"
)

func main() {
	os.Exit(cli.NewApp().Execute(context.Background(), os.Args[1:]))
}
