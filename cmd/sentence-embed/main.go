package main

import "github.com/Aleph-Alpha/sentence-embed/internal/cli"

func main() {
	cli.Execute()
}
