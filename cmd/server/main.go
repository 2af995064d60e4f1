package main // entry point for the envirowatch binary

import "github.com/iliyamo/envirowatch/internal/cli" // command tree

func main() {
	cli.Execute()
}
