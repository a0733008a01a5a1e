// shopd serves the storefront's media library and storage settings.
package main

import (
	"github.com/megaskyshop/storefront/src/shopd/core"
)

func main() {
	core.Execute()
}
