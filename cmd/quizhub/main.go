package main

import (
	"log"

	"github.com/ilmhub/quizhub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
