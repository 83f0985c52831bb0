// Command harotorch builds HaroTorch as a Go plugin file that may be listed in
// the Files of plugins.toml:
//
//	go build -buildmode=plugin -o harotorch.so ./plugins/harotorch
package main

import (
	"github.com/dm-vev/harotorch/harotorch"
	"github.com/dm-vev/harotorch/server/plugin"
)

// Init is looked up by the plugin manager when the file is loaded.
func Init(api *plugin.API) (plugin.Plugin, error) {
	return harotorch.Init(api)
}

func main() {}
