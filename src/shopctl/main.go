// shopctl is the command-line client for the shopd media storage API.
package main

import "github.com/megaskyshop/storefront/src/shopctl/internal/cmd"

func main() {
	cmd.Execute()
}
