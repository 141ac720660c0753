package main

import "github.com/yanqian/faq-engine/internal/cli"

func main() {
	cli.Execute()
}
