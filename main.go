package main

import (
	"flag"
	"fmt"
	"os"

	"kvstore/bootstrap"
)

func main() {
	flag.Parse()
	if _, err := bootstrap.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "kvstore:", err)
		os.Exit(1)
	}
}
