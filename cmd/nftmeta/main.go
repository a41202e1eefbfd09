// Command nftmeta authors NFT metadata for glTF assets.
package main

import (
	"os"

	"github.com/mesh-intelligence/nftmeta/internal/cli"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	os.Exit(cli.Execute())
}
