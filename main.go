package main

import "github.com/chunkgraph/chunkgraph/cmd"

func main() {
	cmd.Execute()
}
