package main

import "storefront/cmd/storefront/cmd"

func main() {
	cmd.Execute()
}
